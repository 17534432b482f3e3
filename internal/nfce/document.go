package nfce

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/casalista/purchase-service/internal/matching"
)

// Document is a parsed NFC-e receipt ready for persistence.
type Document struct {
	AccessKey   AccessKey
	StoreName   string
	StoreCNPJ   string
	IssuedAt    time.Time
	TotalAmount float64
	Items       []DocumentItem
}

// DocumentItem is one product line of the receipt. Barcode is the
// normalized GTIN, empty when the receipt carries none ("SEM GTIN").
type DocumentItem struct {
	Code       string
	Barcode    string
	Name       string
	Unit       string
	Quantity   float64
	UnitPrice  float64
	TotalPrice float64
}

// XML envelope. Distributed documents come wrapped in nfeProc; documents
// straight from the emitter are a bare NFe element.
type procXML struct {
	XMLName xml.Name `xml:"nfeProc"`
	NFe     nfeXML   `xml:"NFe"`
}

type nfeXML struct {
	XMLName xml.Name  `xml:"NFe"`
	InfNFe  infNFeXML `xml:"infNFe"`
}

type infNFeXML struct {
	ID    string    `xml:"Id,attr"`
	Ide   ideXML    `xml:"ide"`
	Emit  emitXML   `xml:"emit"`
	Det   []detXML  `xml:"det"`
	Total totalXML  `xml:"total"`
}

type ideXML struct {
	DhEmi string `xml:"dhEmi"`
	DEmi  string `xml:"dEmi"` // legacy layout
}

type emitXML struct {
	CNPJ  string `xml:"CNPJ"`
	XNome string `xml:"xNome"`
	XFant string `xml:"xFant"`
}

type detXML struct {
	Prod prodXML `xml:"prod"`
}

type prodXML struct {
	CProd  string `xml:"cProd"`
	CEAN   string `xml:"cEAN"`
	XProd  string `xml:"xProd"`
	UCom   string `xml:"uCom"`
	QCom   string `xml:"qCom"`
	VUnCom string `xml:"vUnCom"`
	VProd  string `xml:"vProd"`
}

type totalXML struct {
	ICMSTot icmsTotXML `xml:"ICMSTot"`
}

type icmsTotXML struct {
	VNF string `xml:"vNF"`
}

// ParseDocument parses NFC-e XML into a Document. The access key is taken
// from the infNFe Id attribute and must validate; line items with an
// unusable name are dropped rather than failing the whole document.
func ParseDocument(content []byte) (*Document, error) {
	var inf infNFeXML

	var proc procXML
	if err := xml.Unmarshal(content, &proc); err == nil && len(proc.NFe.InfNFe.Det) > 0 {
		inf = proc.NFe.InfNFe
	} else {
		var bare nfeXML
		if err := xml.Unmarshal(content, &bare); err != nil {
			return nil, fmt.Errorf("parse NFC-e XML: %w", err)
		}
		inf = bare.InfNFe
	}

	key, err := ParseAccessKey(strings.TrimPrefix(inf.ID, "NFe"))
	if err != nil {
		return nil, fmt.Errorf("document access key: %w", err)
	}

	issuedAt, err := parseEmissionDate(inf.Ide)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		AccessKey: key,
		StoreName: storeName(inf.Emit),
		StoreCNPJ: inf.Emit.CNPJ,
		IssuedAt:  issuedAt,
		Items:     make([]DocumentItem, 0, len(inf.Det)),
	}
	doc.TotalAmount = parseAmount(inf.Total.ICMSTot.VNF)

	for _, det := range inf.Det {
		name := strings.TrimSpace(det.Prod.XProd)
		if name == "" {
			continue
		}
		doc.Items = append(doc.Items, DocumentItem{
			Code:       strings.TrimSpace(det.Prod.CProd),
			Barcode:    matching.NormalizeBarcode(det.Prod.CEAN),
			Name:       name,
			Unit:       strings.TrimSpace(det.Prod.UCom),
			Quantity:   parseAmount(det.Prod.QCom),
			UnitPrice:  parseAmount(det.Prod.VUnCom),
			TotalPrice: parseAmount(det.Prod.VProd),
		})
	}

	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("document %s has no usable line items", key)
	}

	return doc, nil
}

func storeName(emit emitXML) string {
	if name := strings.TrimSpace(emit.XFant); name != "" {
		return name
	}
	return strings.TrimSpace(emit.XNome)
}

func parseEmissionDate(ide ideXML) (time.Time, error) {
	if ide.DhEmi != "" {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(ide.DhEmi))
		if err != nil {
			return time.Time{}, fmt.Errorf("parse emission timestamp %q: %w", ide.DhEmi, err)
		}
		return t, nil
	}
	if ide.DEmi != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(ide.DEmi))
		if err != nil {
			return time.Time{}, fmt.Errorf("parse emission date %q: %w", ide.DEmi, err)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("document has no emission date")
}

// parseAmount reads NF-e decimal fields (dot separator). Malformed or
// empty values degrade to zero; absence of data must not fail an import.
func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
