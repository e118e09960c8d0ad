package output

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
)

// Workbook sheet names
const (
	SheetSummaries    = "Summaries"
	SheetJobs         = "Databricks_Jobs"
	SheetStorageDir   = "S3_Direct_Storage"
	SheetStorageTable = "S3_Table_Based_Storage"
	SheetWarehouses   = "SQL_Warehouses"
	SheetDevelopment  = "Development_Cost"
)

var (
	summaryHeader = []string{"Category", "Monthly Cost ($)", "Quarterly Cost ($)", "Half-Yearly Cost ($)", "Yearly Cost ($)"}
	jobsHeader    = []string{
		"Tier", "Name", "Runtime Hours", "Runs per Month", "Compute Type", "Instance", "Worker Nodes",
		"Calculated DBU", "Compute Cost ($)", "Infra Cost ($)",
	}
	directHeader    = []string{"Zone", "Storage Class", "Storage Amount", "Unit", "Monthly Growth %"}
	tableHeader     = []string{"Zone", "Table Name", "Records", "Columns", "Number of Tables", "Avg Column Length"}
	warehouseHeader = []string{
		"Name", "Type", "Size", "Nodes", "Hours per Day", "Days per Month", "Auto Suspend", "Suspend After (min)",
	}
	devHeader = []string{
		"Compute Type", "Driver Instance", "Worker Instance", "Worker Nodes", "Hours per Month", "Number of Months",
		"Compute Cost ($)", "Infra Cost ($)", "Total Cost ($)",
	}
)

// XLSXFormatter writes a consolidated workbook. Cost sheets come from the
// estimate; storage and warehouse sheets echo the configuration as entered.
type XLSXFormatter struct{}

// Format returns FormatXLSX
func (f *XLSXFormatter) Format() Format { return FormatXLSX }

// Render writes the workbook to w
func (f *XLSXFormatter) Render(w io.Writer, report *Report) error {
	if err := report.validate(); err != nil {
		return err
	}

	book := excelize.NewFile()
	defer book.Close()

	sb := &sheetBuilder{book: book}
	sb.sheet(SheetSummaries, summaryHeader, summaryRows(report.Estimate))
	sb.sheet(SheetJobs, jobsHeader, jobRows(report.Estimate))
	if report.Estimate.StorageMode == types.StorageTableBased {
		sb.sheet(SheetStorageTable, tableHeader, tableRows(report))
	} else {
		sb.sheet(SheetStorageDir, directHeader, directRows(report))
	}
	sb.sheet(SheetWarehouses, warehouseHeader, warehouseRows(report))
	sb.sheet(SheetDevelopment, devHeader, devRows(report.Estimate))
	if sb.err != nil {
		return sb.err
	}

	if _, err := book.WriteTo(w); err != nil {
		return errors.Export("write workbook", err)
	}
	return nil
}

type sheetBuilder struct {
	book  *excelize.File
	count int
	err   error
}

// sheet creates a sheet with a header row followed by rows. The first call
// renames the workbook's default sheet.
func (b *sheetBuilder) sheet(name string, header []string, rows [][]interface{}) {
	if b.err != nil {
		return
	}
	if b.count == 0 {
		if err := b.book.SetSheetName(b.book.GetSheetName(0), name); err != nil {
			b.err = errors.Export("rename sheet "+name, err)
			return
		}
	} else if _, err := b.book.NewSheet(name); err != nil {
		b.err = errors.Export("create sheet "+name, err)
		return
	}
	b.count++

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := b.writeRow(name, 1, headerRow); err != nil {
		b.err = err
		return
	}
	for i, row := range rows {
		if err := b.writeRow(name, i+2, row); err != nil {
			b.err = err
			return
		}
	}
}

func (b *sheetBuilder) writeRow(sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Export("address row", err)
	}
	if err := b.book.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.Export("write "+sheet+" row", err).WithContext("row", row)
	}
	return nil
}

// num converts a decimal to a spreadsheet number
func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func summaryRows(est *types.Estimate) [][]interface{} {
	rows := make([][]interface{}, 0, len(est.Summary.Lines)+1)
	add := func(label string, h types.HorizonCosts) {
		rows = append(rows, []interface{}{label, num(h.Monthly), num(h.Quarterly), num(h.HalfYearly), num(h.Yearly)})
	}
	for _, line := range est.Summary.Lines {
		add(line.Label, line.HorizonCosts)
	}
	add("Total", est.Summary.Total)
	return rows
}

func jobRows(est *types.Estimate) [][]interface{} {
	var rows [][]interface{}
	for _, tier := range est.Jobs {
		for _, j := range tier.Jobs {
			rows = append(rows, []interface{}{
				tier.Tier.DisplayName(), j.Name, j.RuntimeHours, j.RunsPerMonth, j.ComputeFamily, j.InstanceID,
				j.WorkerNodes, num(j.UsageUnits), num(j.ComputeCost), num(j.InfraCost),
			})
		}
	}
	return rows
}

func directRows(report *Report) [][]interface{} {
	var zones []types.StorageZoneConfig
	switch {
	case report.Workload != nil:
		zones = report.Workload.DirectZones
	case report.Estimate.DirectStorage != nil:
		for _, z := range report.Estimate.DirectStorage.Zones {
			zones = append(zones, z.StorageZoneConfig)
		}
	}

	rows := make([][]interface{}, 0, len(zones))
	for _, z := range zones {
		rows = append(rows, []interface{}{z.Zone, z.StorageClass, z.Amount, string(z.Unit), z.MonthlyGrowthPercent})
	}
	return rows
}

func tableRows(report *Report) [][]interface{} {
	var zones []types.TableZoneConfig
	switch {
	case report.Workload != nil:
		zones = report.Workload.TableZones
	case report.Estimate.TableStorage != nil:
		for _, z := range report.Estimate.TableStorage.Zones {
			zones = append(zones, types.TableZoneConfig{Zone: z.Zone, Tables: z.Tables})
		}
	}

	var rows [][]interface{}
	for _, z := range zones {
		for _, t := range z.Tables {
			rows = append(rows, []interface{}{z.Zone, t.TableName, t.Records, t.Columns, t.TableCount, t.AvgColumnLength})
		}
	}
	return rows
}

func warehouseRows(report *Report) [][]interface{} {
	var whs []types.WarehouseConfig
	if report.Workload != nil {
		whs = report.Workload.Warehouses
	} else {
		for _, wh := range report.Estimate.Warehouses.Warehouses {
			whs = append(whs, wh.WarehouseConfig)
		}
	}

	rows := make([][]interface{}, 0, len(whs))
	for _, wh := range whs {
		rows = append(rows, []interface{}{
			wh.Name, wh.ComputeType, wh.SizeID, wh.NodeCount, wh.HoursPerDay, wh.DaysPerMonth,
			wh.AutoSuspend, wh.SuspendAfterMinutes,
		})
	}
	return rows
}

func devRows(est *types.Estimate) [][]interface{} {
	rows := make([][]interface{}, 0, len(est.DevClusters.Clusters))
	for _, c := range est.DevClusters.Clusters {
		rows = append(rows, []interface{}{
			c.ComputeType, c.DriverInstanceID, c.WorkerInstanceID, c.WorkerNodes, c.HoursPerMonth, c.Months,
			num(c.ComputeCost), num(c.InfraCost), num(c.TotalCost),
		})
	}
	return rows
}
