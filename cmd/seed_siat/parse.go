package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// codeEntry fila de una respuesta sincronizarParametrica*.
type codeEntry struct {
	Code        int
	Description string
}

// legendEntry fila de sincronizarListaLeyendasFactura.
type legendEntry struct {
	Activity string
	Text     string
}

type codesResponse struct {
	Transaction bool `xml:"transaccion"`
	Items       []struct {
		Code        string `xml:"codigoClasificador"`
		Description string `xml:"descripcion"`
	} `xml:"listaCodigos"`
}

type legendsResponse struct {
	Transaction bool `xml:"transaccion"`
	Items       []struct {
		Activity string `xml:"codigoActividad"`
		Text     string `xml:"descripcionLeyenda"`
	} `xml:"listaLeyendas"`
}

// newDecoder el SIN responde en ISO-8859-1 en varios servicios.
func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	return dec
}

// decodeResponse busca el primer elemento cuyo nombre coincide con name, ignorando el sobre SOAP.
func decodeResponse(r io.Reader, name string, v any) error {
	dec := newDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return fmt.Errorf("elemento %s no encontrado", name)
		}
		if err != nil {
			return fmt.Errorf("decodificar XML: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == name {
			return dec.DecodeElement(v, &se)
		}
	}
}

func parseCodes(r io.Reader) ([]codeEntry, error) {
	var resp codesResponse
	if err := decodeResponse(r, "RespuestaListaParametricas", &resp); err != nil {
		return nil, err
	}
	if !resp.Transaction {
		return nil, fmt.Errorf("la respuesta del SIN indica transacción fallida")
	}
	out := make([]codeEntry, 0, len(resp.Items))
	for _, it := range resp.Items {
		code, err := strconv.Atoi(strings.TrimSpace(it.Code))
		if err != nil {
			return nil, fmt.Errorf("codigoClasificador %q: %w", it.Code, err)
		}
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			continue
		}
		out = append(out, codeEntry{Code: code, Description: desc})
	}
	return out, nil
}

func parseLegends(r io.Reader) ([]legendEntry, error) {
	var resp legendsResponse
	if err := decodeResponse(r, "RespuestaListaParametricasLeyendas", &resp); err != nil {
		return nil, err
	}
	if !resp.Transaction {
		return nil, fmt.Errorf("la respuesta del SIN indica transacción fallida")
	}
	out := make([]legendEntry, 0, len(resp.Items))
	for _, it := range resp.Items {
		act, text := strings.TrimSpace(it.Activity), strings.TrimSpace(it.Text)
		if act == "" || text == "" {
			continue
		}
		out = append(out, legendEntry{Activity: act, Text: text})
	}
	return out, nil
}
