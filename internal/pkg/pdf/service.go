// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/thangka-store-backend/internal/config"
	"github.com/your-org/thangka-store-backend/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateInvoice generates a PDF invoice for an order
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	data := buildInvoiceData(o, CompanyInfo{
		Name:    s.config.App.CompanyName,
		Address: s.config.App.CompanyAddress,
		Phone:   s.config.App.CompanyPhone,
		Email:   s.config.App.CompanyEmail,
		Website: s.config.App.CompanyWebsite,
	})

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func (s *Service) generateHTML(data InvoiceData) (string, error) {
	tmpl := template.Must(template.New("invoice").Parse(invoiceTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// InvoiceData represents the data passed to the invoice template.
// Monetary amounts are pre-formatted so the template stays arithmetic-free.
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	OrderNumber   string
	OrderDate     string
	Status        string
	PaymentStatus string
	PaymentMethod string
	Currency      string
	ShipTo        order.ShippingAddress
	Items         []InvoiceItem
	Subtotal      string
	Shipping      string
	Tax           string
	Total         string
	Company       CompanyInfo
}

// InvoiceItem is one pre-formatted invoice line
type InvoiceItem struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

func buildInvoiceData(o *order.Order, company CompanyInfo) InvoiceData {
	data := InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.OrderNumber),
		InvoiceDate:   time.Now().Format("January 2, 2006"),
		OrderNumber:   o.OrderNumber,
		OrderDate:     o.CreatedAt.Format("January 2, 2006"),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: string(o.PaymentMethod),
		Currency:      o.Currency,
		ShipTo:        o.ShippingAddress,
		Subtotal:      formatAmount(o.Subtotal),
		Shipping:      formatAmount(o.ShippingCost),
		Tax:           formatAmount(o.Tax),
		Total:         formatAmount(o.Total),
		Company:       company,
	}
	for _, item := range o.Items {
		data.Items = append(data.Items, InvoiceItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    formatAmount(item.Price),
			Total:    formatAmount(item.LineTotal()),
		})
	}
	return data
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("%.2f", float64(minor)/100)
}

// Invoice HTML template
const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .company-info {
            flex: 1;
        }
        .invoice-info {
            text-align: right;
            flex: 1;
        }
        .invoice-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .invoice-details {
            margin-bottom: 30px;
        }
        .invoice-details table {
            width: 100%;
        }
        .invoice-details td {
            padding: 5px 0;
            vertical-align: top;
        }
        .invoice-details .label {
            font-weight: bold;
            width: 150px;
        }
        .shipping-info {
            margin-bottom: 30px;
        }
        .section-title {
            font-size: 16px;
            font-weight: bold;
            margin-bottom: 10px;
            color: #374151;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            width: 80px;
        }
        .totals {
            float: right;
            width: 300px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .totals .label {
            text-align: right;
            font-weight: bold;
        }
        .totals .amount {
            text-align: right;
            width: 100px;
        }
        .total-row {
            font-size: 18px;
            font-weight: bold;
            border-top: 2px solid #333 !important;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
        .status-badge {
            display: inline-block;
            padding: 4px 8px;
            border-radius: 4px;
            font-size: 12px;
            font-weight: bold;
            text-transform: uppercase;
        }
        .status-paid {
            background-color: #dcfce7;
            color: #166534;
        }
        .status-pending {
            background-color: #fef3c7;
            color: #92400e;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>{{.Company.Address}}</p>
            <p>Phone: {{.Company.Phone}}</p>
            <p>Email: {{.Company.Email}}</p>
            <p>{{.Company.Website}}</p>
        </div>
        <div class="invoice-info">
            <div class="invoice-title">INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order #:</strong> {{.OrderNumber}}</p>
        </div>
    </div>

    <div class="invoice-details">
        <table>
            <tr>
                <td class="label">Order Date:</td>
                <td>{{.OrderDate}}</td>
                <td class="label" style="text-align: right;">Payment Status:</td>
                <td style="text-align: right;">
                    <span class="status-badge {{if eq .PaymentStatus "completed"}}status-paid{{else}}status-pending{{end}}">
                        {{.PaymentStatus}}
                    </span>
                </td>
            </tr>
            <tr>
                <td class="label">Order Status:</td>
                <td>{{.Status}}</td>
                <td class="label" style="text-align: right;">Payment Method:</td>
                <td style="text-align: right;">{{.PaymentMethod}}</td>
            </tr>
        </table>
    </div>

    <div class="shipping-info">
        <div class="section-title">Ship To:</div>
        <p><strong>{{.ShipTo.FirstName}} {{.ShipTo.LastName}}</strong></p>
        <p>{{.ShipTo.Address}}</p>
        <p>{{.ShipTo.City}}, {{.ShipTo.State}} {{.ShipTo.ZipCode}}</p>
        <p>{{.ShipTo.Country}}</p>
        <p>Phone: {{.ShipTo.Phone}}</p>
        <p>Email: {{.ShipTo.Email}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Price</th>
                <th class="total-col">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Items}}
            <tr>
                <td><strong>{{.Name}}</strong></td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{$.Currency}} {{.Price}}</td>
                <td class="total-col">{{$.Currency}} {{.Total}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Subtotal:</td>
                <td class="amount">{{.Currency}} {{.Subtotal}}</td>
            </tr>
            <tr>
                <td class="label">Shipping:</td>
                <td class="amount">{{.Currency}} {{.Shipping}}</td>
            </tr>
            <tr>
                <td class="label">Tax:</td>
                <td class="amount">{{.Currency}} {{.Tax}}</td>
            </tr>
            <tr class="total-row">
                <td class="label">Total:</td>
                <td class="amount">{{.Currency}} {{.Total}}</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for your purchase!</p>
        <p>If you have any questions about this invoice, please contact us at {{.Company.Email}} or {{.Company.Phone}}</p>
    </div>
</body>
</html>
`
