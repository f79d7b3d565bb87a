package pdf

import (
	"fmt"
	"strings"

	"github.com/andy/hourtab/internal/config"
	"github.com/andy/hourtab/internal/domain"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotoconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// BillGenerator renders bills as PDF documents
type BillGenerator struct {
	user config.UserConfig
}

func NewBillGenerator(user config.UserConfig) *BillGenerator {
	return &BillGenerator{user: user}
}

// Generate renders the bill to outputPath. The bill must have its Entries and
// Client populated.
func (g *BillGenerator) Generate(bill *domain.Bill, outputPath string) error {
	if bill.Client == nil {
		return fmt.Errorf("bill %d has no client attached", bill.ID)
	}

	m := maroto.New(marotoconfig.NewBuilder().Build())

	title := "INVOICE"
	if bill.Type == domain.BillTypeAct {
		title = "ACT OF WORK"
	}

	// Header: issuer on the left, document kind and number on the right
	m.AddRow(10,
		col.New(8).Add(
			text.New(g.user.Name, props.Text{
				Size:  16,
				Style: fontstyle.Bold,
			}),
		),
		col.New(4).Add(
			text.New(title, props.Text{
				Size:  20,
				Style: fontstyle.BoldItalic,
				Align: align.Right,
			}),
		),
	)

	m.AddRow(6,
		col.New(8).Add(
			text.New(g.user.Email, props.Text{
				Size: 9,
			}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("Number: %s", bill.BillNumber), props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
		),
	)

	m.AddRow(5,
		col.New(8).Add(
			text.New(g.user.Phone, props.Text{
				Size: 9,
			}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("Issued: %s", bill.IssueDate.Format("January 2, 2006")), props.Text{
				Size:  9,
				Align: align.Right,
			}),
		),
	)

	if g.user.Address != "" {
		m.AddRow(5,
			col.New(8).Add(
				text.New(g.user.Address, props.Text{
					Size: 9,
				}),
			),
		)
	}

	m.AddRow(10)

	m.AddRow(8,
		col.New(12).Add(
			text.New(fmt.Sprintf("Bill To: %s", bill.Client.Name), props.Text{
				Size:  11,
				Style: fontstyle.Bold,
			}),
		),
	)

	if bill.Client.ContactInfo != "" {
		m.AddRow(5,
			col.New(12).Add(
				text.New(bill.Client.ContactInfo, props.Text{
					Size: 9,
				}),
			),
		)
	}

	m.AddRow(5,
		col.New(12).Add(
			text.New(fmt.Sprintf("Period: %s to %s",
				bill.PeriodFrom.Format("2006-01-02"),
				bill.PeriodTo.Format("2006-01-02")), props.Text{
				Size: 9,
			}),
		),
	)

	m.AddRow(10)

	m.AddRow(8,
		col.New(12).Add(
			text.New("Time Entries", props.Text{
				Size:  12,
				Style: fontstyle.Bold,
			}),
		),
	)

	m.AddRow(8,
		col.New(2).Add(
			text.New("Date", props.Text{
				Size:  9,
				Style: fontstyle.Bold,
			}),
		),
		col.New(6).Add(
			text.New("Notes", props.Text{
				Size:  9,
				Style: fontstyle.Bold,
			}),
		),
		col.New(1).Add(
			text.New("Time", props.Text{
				Size:  9,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
		),
		col.New(3).Add(
			text.New("Amount", props.Text{
				Size:  9,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
		),
	)

	rate := bill.Client.HourlyRate
	for _, entry := range bill.Entries {
		m.AddRow(6,
			col.New(2).Add(
				text.New(entry.WorkDate.Format("2006-01-02"), props.Text{
					Size: 8,
				}),
			),
			col.New(6).Add(
				text.New(strings.TrimSpace(entry.Notes), props.Text{
					Size: 8,
				}),
			),
			col.New(1).Add(
				text.New(fmt.Sprintf("%dh %dm", entry.Hours, entry.Minutes), props.Text{
					Size:  8,
					Align: align.Right,
				}),
			),
			col.New(3).Add(
				text.New(fmt.Sprintf("%.2f", entry.Amount(rate)), props.Text{
					Size:  8,
					Align: align.Right,
				}),
			),
		)
	}

	m.AddRow(8)

	m.AddRow(8,
		col.New(6),
		col.New(2).Add(
			text.New("Total:", props.Text{
				Size:  9,
				Style: fontstyle.Bold,
			}),
		),
		col.New(1).Add(
			text.New(fmt.Sprintf("%dh %dm", bill.TotalHours, bill.TotalMinutes), props.Text{
				Size:  9,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
		),
		col.New(3).Add(
			text.New(fmt.Sprintf("%.2f", bill.TotalAmount), props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
		),
	)

	if bill.Notes != "" {
		m.AddRow(10)
		m.AddRow(8,
			col.New(12).Add(
				text.New(bill.Notes, props.Text{
					Size: 8,
				}),
			),
		)
	}

	document, err := m.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate PDF document: %w", err)
	}

	if err := document.Save(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF: %w", err)
	}

	return nil
}
