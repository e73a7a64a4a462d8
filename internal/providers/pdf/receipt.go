package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	paymentdomain "github.com/expediterhq/expediter/internal/payment/domain"
	"github.com/expediterhq/expediter/internal/payment/format"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateReceipt(ctx context.Context, receipt paymentdomain.Receipt) (io.Reader, error) {
	cfg := config.NewBuilder().Build()
	m := maroto.New(cfg)

	m.AddRow(18,
		text.NewCol(12, "Receipt", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	meta := []string{
		"Order: " + receipt.OrderNumber,
		"Printed: " + receipt.Timestamp.Format(time.RFC1123),
		"Server: " + receipt.ServerName,
	}
	if receipt.TableNumber != nil {
		meta = append(meta, fmt.Sprintf("Table: %d", *receipt.TableNumber))
	}
	if receipt.Customer != nil {
		meta = append(meta, "Customer: "+receipt.Customer.Name+" "+receipt.Customer.Phone)
		if receipt.Customer.Address != "" {
			meta = append(meta, "Deliver to: "+receipt.Customer.Address)
		}
	}
	metaCol := col.New(12)
	for i, line := range meta {
		metaCol.Add(text.New(line, props.Text{Size: 9, Top: float64(i * 4)}))
	}
	m.AddRow(float64(6+len(meta)*4), metaCol)

	m.AddRow(8,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, item := range receipt.Items {
		label := item.Name
		if item.Notes != "" {
			label += " (" + item.Notes + ")"
		}
		m.AddRow(8,
			text.NewCol(6, label, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, format.FormatMinor(item.Price, ""), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, format.FormatMinor(item.Total, ""), props.Text{Size: 9, Align: align.Right}),
		)
	}

	totals := [][2]string{
		{"Subtotal", format.FormatMinor(receipt.Subtotal, receipt.Currency)},
		{"Tax", format.FormatMinor(receipt.Tax, receipt.Currency)},
		{"Total", format.FormatMinor(receipt.Total, receipt.Currency)},
	}
	if receipt.Payment != nil {
		label := "Paid (" + string(receipt.Payment.Method) + ")"
		if receipt.Payment.CardLastDigits != "" {
			label += " ****" + receipt.Payment.CardLastDigits
		}
		totals = append(totals, [2]string{label, format.FormatMinor(receipt.Payment.Amount, receipt.Currency)})
	}
	if receipt.RemainingBalance != nil {
		totals = append(totals, [2]string{"Balance due", format.FormatMinor(*receipt.RemainingBalance, receipt.Currency)})
	}
	for _, row := range totals {
		m.AddRow(7,
			col.New(6),
			text.NewCol(4, row[0], props.Text{Size: 9}),
			text.NewCol(2, row[1], props.Text{Size: 9, Align: align.Right}),
		)
	}

	if receipt.Footer != "" {
		m.AddRow(12,
			text.NewCol(12, receipt.Footer, props.Text{Size: 8, Align: align.Center, Top: 4}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
