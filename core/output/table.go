package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
)

// Terminal colors for section headers and warnings
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	cyan   = "\033[36m"
	yellow = "\033[33m"
)

// TableFormatter renders an estimate as terminal tables
type TableFormatter struct {
	// ShowDetails adds per-record tables below the summary
	ShowDetails bool

	// Color enables ANSI colors in section headers
	Color bool
}

// Format returns FormatTable
func (f *TableFormatter) Format() Format { return FormatTable }

// Render writes the summary and, optionally, per-category detail
func (f *TableFormatter) Render(w io.Writer, report *Report) error {
	if err := report.validate(); err != nil {
		return err
	}
	est := report.Estimate
	p := &printer{out: w, color: f.Color}

	p.header(fmt.Sprintf("Cost Summary (%s)", est.Currency))
	summary := p.table([]string{"Category", "Monthly", "Quarterly", "Half-Yearly", "Yearly"})
	for _, line := range est.Summary.Lines {
		summary.Append(horizonRow(line.Label, line.HorizonCosts))
	}
	summary.SetFooter(horizonRow("Total", est.Summary.Total))
	summary.Render()

	if f.ShowDetails {
		p.jobs(est)
		p.storage(est)
		p.warehouses(est)
		p.devClusters(est)
	}

	if len(est.Warnings) > 0 {
		p.header("Warnings")
		for _, warn := range est.Warnings {
			p.warning("no %s rate for %q (%s); priced at zero", warn.Category, warn.Key, warn.Record)
		}
	}
	return p.err
}

type printer struct {
	out   io.Writer
	color bool
	err   error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintf(p.out, format, args...); err != nil {
		p.err = errors.Export("write table output", err)
	}
}

func (p *printer) paint(c, text string) string {
	if !p.color {
		return text
	}
	return c + text + reset
}

func (p *printer) header(title string) {
	p.printf("\n%s\n\n", p.paint(bold+cyan, "━━━ "+title+" ━━━"))
}

func (p *printer) warning(format string, args ...interface{}) {
	p.printf("%s%s\n", p.paint(yellow, "⚠ "), fmt.Sprintf(format, args...))
}

func (p *printer) table(headers []string) *tablewriter.Table {
	t := tablewriter.NewWriter(p.out)
	t.SetHeader(headers)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	return t
}

func (p *printer) jobs(est *types.Estimate) {
	p.header("Jobs")
	t := p.table([]string{"Tier", "Job", "Family", "Instance", "Workers", "Node Hours", "DBU", "Compute", "Infra"})
	t.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})
	for _, tier := range est.Jobs {
		for _, j := range tier.Jobs {
			t.Append([]string{
				tier.Tier.DisplayName(), j.Name, j.ComputeFamily, j.InstanceID,
				strconv.Itoa(j.WorkerNodes), j.NodeHours.String(), j.UsageUnits.String(),
				money(j.ComputeCost), money(j.InfraCost),
			})
		}
	}
	t.SetFooter([]string{"", "", "", "", "", "", est.JobsUsageUnits.String(), money(est.JobsComputeCost), money(est.JobsInfraCost)})
	t.Render()
}

func (p *printer) storage(est *types.Estimate) {
	switch {
	case est.DirectStorage != nil:
		p.header("Storage (direct)")
		t := p.table([]string{"Zone", "Class", "GB", "Rate/GB", "Monthly", "Quarterly", "Half-Yearly", "Yearly"})
		for _, z := range est.DirectStorage.Zones {
			t.Append([]string{
				z.Zone, z.StorageClass, z.VolumeGB.String(), z.RatePerGB.String(),
				money(z.MonthlyCost), money(z.Quarterly), money(z.HalfYearly), money(z.Yearly),
			})
		}
		s := est.DirectStorage
		t.SetFooter([]string{"", "", "", "", money(s.Monthly), money(s.Quarterly), money(s.HalfYearly), money(s.Yearly)})
		t.Render()
	case est.TableStorage != nil:
		p.header("Storage (table-based)")
		t := p.table([]string{"Zone", "Tables", "Estimated GB", "Monthly"})
		for _, z := range est.TableStorage.Zones {
			t.Append([]string{z.Zone, strconv.Itoa(len(z.Tables)), z.EstimatedGB.StringFixed(6), money(z.MonthlyCost)})
		}
		s := est.TableStorage
		t.SetFooter([]string{"", "", s.EstimatedGB.StringFixed(6), money(s.MonthlyCost)})
		t.Render()
	}
}

func (p *printer) warehouses(est *types.Estimate) {
	p.header("SQL Warehouses")
	t := p.table([]string{"Name", "Type", "Size", "Nodes", "Hours/Month", "DBU Cost", "Infra Cost"})
	for _, wh := range est.Warehouses.Warehouses {
		hours := wh.HoursPerMonth.String()
		if !wh.Priced {
			hours = "-"
		}
		t.Append([]string{
			wh.Name, wh.ComputeType, wh.SizeID, strconv.Itoa(wh.NodeCount), hours,
			money(wh.DBUCost), money(wh.InfraCost),
		})
	}
	t.SetFooter([]string{"", "", "", "", "", money(est.Warehouses.DBUCost), money(est.Warehouses.InfraCost)})
	t.Render()
}

func (p *printer) devClusters(est *types.Estimate) {
	p.header("Development")
	t := p.table([]string{"Compute Type", "Driver", "Worker", "Workers", "Hours/Month", "Months", "Compute", "Infra", "Total"})
	for _, c := range est.DevClusters.Clusters {
		t.Append([]string{
			c.ComputeType, c.DriverInstanceID, c.WorkerInstanceID, strconv.Itoa(c.WorkerNodes),
			formatFloat(c.HoursPerMonth), formatFloat(c.Months),
			money(c.ComputeCost), money(c.InfraCost), money(c.TotalCost),
		})
	}
	d := est.DevClusters
	t.SetFooter([]string{"", "", "", "", "", "", money(d.ComputeCost), money(d.InfraCost), money(d.Total())})
	t.Render()
}

func horizonRow(label string, h types.HorizonCosts) []string {
	return []string{label, money(h.Monthly), money(h.Quarterly), money(h.HalfYearly), money(h.Yearly)}
}

// money formats an amount with two decimals and thousands separators
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + frac
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
