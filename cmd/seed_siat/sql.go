package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

// seedOrder orden de los bloques en la migración generada.
var seedOrder = []string{
	pkgsiat.CatalogIdentityDocuments,
	pkgsiat.CatalogPaymentMethods,
	pkgsiat.CatalogUnitsOfMeasure,
	pkgsiat.CatalogCurrencies,
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func writeSeedFromCode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("-- Catálogos paramétricos del SIN y leyendas Ley 453.\n")
	bw.WriteString("-- Generado con: go run ./cmd/seed_siat -desde-codigo\n\n")

	for _, name := range seedOrder {
		catalog := pkgsiat.Catalogs[name]
		entries := make([]codeEntry, 0, len(catalog))
		for _, code := range pkgsiat.SortedCodes(catalog) {
			entries = append(entries, codeEntry{Code: code, Description: catalog[code]})
		}
		writeCatalogInsert(bw, name, entries)
		bw.WriteString("\n")
	}

	activities := make([]string, 0, len(pkgsiat.Legends))
	for a := range pkgsiat.Legends {
		if a != pkgsiat.LegendAllActivities {
			activities = append(activities, a)
		}
	}
	sort.Strings(activities)
	legends := []legendEntry{{Activity: pkgsiat.LegendAllActivities, Text: pkgsiat.Legends[pkgsiat.LegendAllActivities]}}
	for _, a := range activities {
		legends = append(legends, legendEntry{Activity: a, Text: pkgsiat.Legends[a]})
	}
	writeLegendInsert(bw, legends)
	return bw.Flush()
}

func writeCatalogSync(w io.Writer, source, catalog string, entries []codeEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("la respuesta no contiene códigos")
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- Catálogo %s sincronizado desde %s (SIN)\n\n", catalog, source)
	writeCatalogInsert(bw, catalog, entries)
	return bw.Flush()
}

// writeLegendSync reemplaza las leyendas de las actividades presentes en la respuesta.
func writeLegendSync(w io.Writer, source string, entries []legendEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("la respuesta no contiene leyendas")
	}
	seen := map[string]bool{}
	var activities []string
	for _, e := range entries {
		if !seen[e.Activity] {
			seen[e.Activity] = true
			activities = append(activities, "'"+escapeSQL(e.Activity)+"'")
		}
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- Leyendas Ley 453 sincronizadas desde %s (SIN)\n\n", source)
	bw.WriteString("BEGIN;\n")
	fmt.Fprintf(bw, "DELETE FROM leyendas WHERE actividad_economica IN (%s);\n", strings.Join(activities, ", "))
	writeLegendInsert(bw, entries)
	bw.WriteString("COMMIT;\n")
	return bw.Flush()
}

func writeCatalogInsert(bw *bufio.Writer, catalog string, entries []codeEntry) {
	bw.WriteString("INSERT INTO catalogos (catalogo, codigo, descripcion) VALUES\n")
	for i, e := range entries {
		sep := ","
		if i == len(entries)-1 {
			sep = ""
		}
		fmt.Fprintf(bw, "    ('%s', %d, '%s')%s\n", escapeSQL(catalog), e.Code, escapeSQL(e.Description), sep)
	}
	bw.WriteString("ON CONFLICT (catalogo, codigo) DO UPDATE SET descripcion = EXCLUDED.descripcion;\n")
}

func writeLegendInsert(bw *bufio.Writer, entries []legendEntry) {
	bw.WriteString("INSERT INTO leyendas (actividad_economica, texto) VALUES\n")
	for i, e := range entries {
		sep := ","
		if i == len(entries)-1 {
			sep = ""
		}
		fmt.Fprintf(bw, "    ('%s', '%s')%s\n", escapeSQL(e.Activity), escapeSQL(e.Text), sep)
	}
	bw.WriteString(";\n")
}
