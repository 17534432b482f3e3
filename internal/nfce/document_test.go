package nfce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNFCe = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc versao="4.00" xmlns="http://www.portalfiscal.inf.br/nfe">
  <NFe>
    <infNFe Id="NFe35260145543915000181650010000123451765432101" versao="4.00">
      <ide>
        <mod>65</mod>
        <dhEmi>2026-01-10T14:32:05-03:00</dhEmi>
      </ide>
      <emit>
        <CNPJ>45543915000181</CNPJ>
        <xNome>Supermercado Bom Preco Ltda</xNome>
        <xFant>Bom Preco</xFant>
      </emit>
      <det nItem="1">
        <prod>
          <cProd>10023</cProd>
          <cEAN>7891000100103</cEAN>
          <xProd>LEITE INTEGRAL 1L</xProd>
          <uCom>UN</uCom>
          <qCom>2.0000</qCom>
          <vUnCom>4.9900</vUnCom>
          <vProd>9.98</vProd>
        </prod>
      </det>
      <det nItem="2">
        <prod>
          <cProd>55100</cProd>
          <cEAN>SEM GTIN</cEAN>
          <xProd>BANANA PRATA KG</xProd>
          <uCom>KG</uCom>
          <qCom>1.2350</qCom>
          <vUnCom>6.5000</vUnCom>
          <vProd>8.03</vProd>
        </prod>
      </det>
      <total>
        <ICMSTot>
          <vNF>18.01</vNF>
        </ICMSTot>
      </total>
    </infNFe>
  </NFe>
</nfeProc>`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleNFCe))
	require.NoError(t, err)

	assert.Equal(t, validKey, doc.AccessKey.String())
	assert.Equal(t, "Bom Preco", doc.StoreName)
	assert.Equal(t, "45543915000181", doc.StoreCNPJ)
	assert.InDelta(t, 18.01, doc.TotalAmount, 1e-9)

	loc := time.FixedZone("", -3*3600)
	assert.True(t, doc.IssuedAt.Equal(time.Date(2026, time.January, 10, 14, 32, 5, 0, loc)))

	require.Len(t, doc.Items, 2)

	milk := doc.Items[0]
	assert.Equal(t, "7891000100103", milk.Barcode)
	assert.Equal(t, "LEITE INTEGRAL 1L", milk.Name)
	assert.Equal(t, "UN", milk.Unit)
	assert.InDelta(t, 2.0, milk.Quantity, 1e-9)
	assert.InDelta(t, 4.99, milk.UnitPrice, 1e-9)
	assert.InDelta(t, 9.98, milk.TotalPrice, 1e-9)

	// "SEM GTIN" must not survive as a barcode.
	banana := doc.Items[1]
	assert.Empty(t, banana.Barcode)
	assert.Equal(t, "BANANA PRATA KG", banana.Name)
}

func TestParseDocumentBareNFe(t *testing.T) {
	bare := `<NFe xmlns="http://www.portalfiscal.inf.br/nfe">
  <infNFe Id="NFe` + validKey2 + `" versao="4.00">
    <ide><dEmi>2025-12-20</dEmi></ide>
    <emit><CNPJ>45543915000181</CNPJ><xNome>Mercado Central</xNome></emit>
    <det nItem="1">
      <prod>
        <cProd>1</cProd>
        <cEAN>7891000100103</cEAN>
        <xProd>ACUCAR CRISTAL 1KG</xProd>
        <uCom>UN</uCom>
        <qCom>1</qCom>
        <vUnCom>5.49</vUnCom>
        <vProd>5.49</vProd>
      </prod>
    </det>
    <total><ICMSTot><vNF>5.49</vNF></ICMSTot></total>
  </infNFe>
</NFe>`

	doc, err := ParseDocument([]byte(bare))
	require.NoError(t, err)

	assert.Equal(t, validKey2, doc.AccessKey.String())
	// No trade name falls back to the legal name.
	assert.Equal(t, "Mercado Central", doc.StoreName)
	assert.Equal(t, time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC), doc.IssuedAt)
	require.Len(t, doc.Items, 1)
}

func TestParseDocumentRejectsBadKey(t *testing.T) {
	bad := `<nfeProc><NFe><infNFe Id="NFe123"><ide><dEmi>2025-12-20</dEmi></ide>
  <det nItem="1"><prod><xProd>X</xProd></prod></det></infNFe></NFe></nfeProc>`

	_, err := ParseDocument([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access key")
}

func TestParseDocumentRejectsEmpty(t *testing.T) {
	_, err := ParseDocument([]byte("not xml at all"))
	assert.Error(t, err)
}
