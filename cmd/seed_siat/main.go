// seed_siat genera scripts SQL para poblar las tablas paramétricas (catalogos, leyendas)
// a partir de las respuestas XML de sincronización del SIN o de los catálogos compilados.
//
// Uso:
//
//	go run ./cmd/seed_siat -desde-codigo
//	    Reescribe internal/infrastructure/postgres/migrations/002_seed_catalogos.sql.
//	go run ./cmd/seed_siat -catalogo metodos_pago respuesta.xml
//	    Convierte una respuesta sincronizarParametrica* (listaCodigos) a SQL.
//	go run ./cmd/seed_siat -leyendas respuesta.xml
//	    Convierte una respuesta sincronizarListaLeyendasFactura (listaLeyendas) a SQL.
//
// Con -salida se escribe a un archivo; por defecto el SQL de sincronización va a stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const seedMigration = "002_seed_catalogos.sql"

func main() {
	fromCode := flag.Bool("desde-codigo", false, "Generar la migración de catálogos desde pkg/siat")
	catalog := flag.String("catalogo", "", "Nombre del catálogo destino para una respuesta listaCodigos")
	legends := flag.Bool("leyendas", false, "La respuesta XML es una lista de leyendas")
	outPath := flag.String("salida", "", "Archivo de salida")
	flag.Parse()

	if err := run(*fromCode, *catalog, *legends, *outPath, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "seed_siat: %v\n", err)
		os.Exit(1)
	}
}

func run(fromCode bool, catalog string, legends bool, outPath string, args []string) error {
	if fromCode {
		if outPath == "" {
			outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", seedMigration)
		}
		return writeTo(outPath, writeSeedFromCode)
	}

	if len(args) != 1 {
		return fmt.Errorf("se espera un archivo XML (o -desde-codigo)")
	}
	if catalog == "" && !legends {
		return fmt.Errorf("indicar -catalogo <nombre> o -leyendas")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("abrir XML: %w", err)
	}
	defer f.Close()

	var write func(io.Writer) error
	if legends {
		entries, err := parseLegends(f)
		if err != nil {
			return err
		}
		write = func(w io.Writer) error { return writeLegendSync(w, args[0], entries) }
	} else {
		entries, err := parseCodes(f)
		if err != nil {
			return err
		}
		write = func(w io.Writer) error { return writeCatalogSync(w, args[0], catalog, entries) }
	}

	if outPath == "" {
		return write(os.Stdout)
	}
	return writeTo(outPath, write)
}

func writeTo(path string, write func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("crear archivo: %w", err)
	}
	if err := write(out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Generado %s\n", path)
	return nil
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
