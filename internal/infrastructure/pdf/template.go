package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ecobat/backend/internal/domain/invoicing"
)

var moneyPrinter = message.NewPrinter(language.English)

// templateFuncs are the formatting helpers available to the invoice
// document template.
var templateFuncs = template.FuncMap{
	"formatMoney":   formatMoney,
	"formatDate":    formatDate,
	"formatDecimal": formatDecimal,
	"formatPercent": formatPercent,
}

// formatMoney formats a decimal amount with two decimal places, grouped
// thousands and the RON currency suffix, e.g. "1,234.50 RON"
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return moneyPrinter.Sprintf("%.2f RON", f)
}

// formatDate formats a date in the Romanian day-first convention
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

// formatDecimal formats a decimal trimming trailing zeros, so piece
// counts print as "100" and weights as "10.5"
func formatDecimal(d decimal.Decimal) string {
	return d.String()
}

// formatPercent formats a rate as a percentage, e.g. "19%"
func formatPercent(d decimal.Decimal) string {
	return d.String() + "%"
}

// invoiceTemplate is the A4 invoice document. The layout follows the
// usual Romanian fiscal invoice: issuer block top left, number and dates
// top right, item table with per-line totals, VAT breakdown at the
// bottom.
var invoiceTemplate = template.Must(template.New("invoice").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="ro">
<head>
<meta charset="UTF-8">
<title>Factura {{.Number}}</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 11px; color: #1a1a1a; padding: 24px; }
  .header { display: flex; justify-content: space-between; margin-bottom: 24px; }
  .issuer h1 { font-size: 14px; margin-bottom: 6px; }
  .issuer p { line-height: 1.5; color: #444; }
  .meta { text-align: right; }
  .meta .number { font-size: 18px; font-weight: bold; margin-bottom: 6px; }
  .meta p { line-height: 1.5; color: #444; }
  table.items { width: 100%; border-collapse: collapse; margin-bottom: 16px; }
  table.items th { background: #f0f0f0; border: 1px solid #ccc; padding: 6px 8px; text-align: left; font-size: 10px; text-transform: uppercase; }
  table.items td { border: 1px solid #ccc; padding: 6px 8px; }
  td.num, th.num { text-align: right; }
  .totals { width: 280px; margin-left: auto; border-collapse: collapse; }
  .totals td { padding: 4px 8px; }
  .totals td.num { text-align: right; }
  .totals tr.grand td { font-weight: bold; font-size: 13px; border-top: 2px solid #1a1a1a; }
  .footer { margin-top: 32px; padding-top: 8px; border-top: 1px solid #ccc; color: #777; font-size: 9px; }
</style>
</head>
<body>
  <div class="header">
    <div class="issuer">
      <h1>{{.Issuer.LegalName}}</h1>
      <p>CUI: {{.Issuer.TaxID}}</p>
      <p>Reg. Com.: {{.Issuer.TradeRegistry}}</p>
      <p>{{.Issuer.Address}}, {{.Issuer.City}}{{if .Issuer.County}}, {{.Issuer.County}}{{end}}</p>
      {{if .Issuer.IBAN}}<p>IBAN: {{.Issuer.IBAN}}{{if .Issuer.BankName}} ({{.Issuer.BankName}}){{end}}</p>{{end}}
    </div>
    <div class="meta">
      <div class="number">Factura {{.Number}}</div>
      <p>Data emiterii: {{formatDate .IssueDate}}</p>
      <p>Data scadentei: {{formatDate .DueDate}}</p>
      <p>Cotatie: {{.TableVersion}}</p>
    </div>
  </div>

  <table class="items">
    <thead>
      <tr>
        <th>#</th>
        <th>Denumire</th>
        <th class="num">Cantitate</th>
        <th>UM</th>
        <th class="num">Pret unitar</th>
        <th class="num">Valoare</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td>{{.LineNo}}</td>
        <td>{{.Description}}</td>
        <td class="num">{{formatDecimal .Quantity}}</td>
        <td>{{.Unit}}</td>
        <td class="num">{{formatMoney .UnitPrice}}</td>
        <td class="num">{{formatMoney .LineTotal}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <table class="totals">
    <tr><td>Subtotal</td><td class="num">{{formatMoney .Subtotal}}</td></tr>
    <tr><td>TVA ({{formatPercent .VATRate}})</td><td class="num">{{formatMoney .VATAmount}}</td></tr>
    <tr class="grand"><td>Total de plata</td><td class="num">{{formatMoney .Total}}</td></tr>
  </table>

  <div class="footer">
    Greutate totala: {{formatDecimal .TotalWeightKg}} kg &middot; Document generat electronic, valabil fara semnatura si stampila.
  </div>
</body>
</html>
`))

// renderInvoiceHTML produces the HTML document for an invoice
func renderInvoiceHTML(invoice *invoicing.Invoice) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, invoice); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}
