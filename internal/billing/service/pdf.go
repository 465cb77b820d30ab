package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"

	"github.com/Yassinesbr/support-center/internal/billing/domain"
	"github.com/Yassinesbr/support-center/internal/providers/pdf"
)

const (
	orgName    = "Support Center"
	orgAddress = "123 Learning St, Casablanca, Morocco"
	orgEmail   = "billing@support-center.example"
)

func (s *Service) InvoicePDF(ctx context.Context, id snowflake.ID) (*domain.PDFDocument, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.GenerateInvoice(ctx, s.invoiceData(invoice))
	if err != nil {
		return nil, err
	}

	return &domain.PDFDocument{
		Content:  content,
		Filename: invoice.Number + ".pdf",
	}, nil
}

func (s *Service) invoiceData(invoice *domain.Invoice) pdf.InvoiceData {
	currency := s.cfg.Get().Currency

	data := pdf.InvoiceData{
		OrgName:    orgName,
		OrgAddress: orgAddress,
		OrgEmail:   orgEmail,

		InvoiceNumber: invoice.Number,
		IssueDate:     invoice.IssueDate.Format("2006-01-02"),
		DueDate:       invoice.DueDate.Format("2006-01-02"),
		Status:        invoice.Status,

		Subtotal:   formatCents(invoice.SubtotalCents, currency),
		Payments:   formatCents(invoice.PaidCents, currency),
		BalanceDue: formatCents(invoice.SubtotalCents-invoice.PaidCents, currency),
	}

	if invoice.Student != nil && invoice.Student.User != nil {
		data.BillToName = invoice.Student.User.FirstName + " " + invoice.Student.User.LastName
		data.BillToEmail = invoice.Student.User.Email
		if invoice.Student.Phone != nil {
			data.BillToPhone = *invoice.Student.Phone
		}
	}

	for _, item := range invoice.Items {
		data.Items = append(data.Items, pdf.InvoiceItem{
			Description: item.Description,
			Qty:         item.Quantity,
			UnitPrice:   formatCents(item.UnitPriceCents, currency),
			Paid:        formatCents(item.PaidCents, currency),
			Amount:      formatCents(item.LineTotalCents, currency),
			Status:      item.Status,
		})
	}

	return data
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, float64(cents)/100)
}
