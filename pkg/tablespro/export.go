package tablespro

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
	"github.com/noah-isme/tables-pro/pkg/export"
)

const (
	// ExportParam selects the export format on a plain GET.
	ExportParam = "_export"
	// SubsetParam names which records the export covers.
	SubsetParam = "_subset"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

var renderers = map[string]renderer{
	FormatCSV:  export.NewCSVExporter(),
	FormatXLSX: export.NewXLSXExporter(),
}

// ExportConfig enables downloads. Formats defaults to csv; Name defaults to "table".
type ExportConfig struct {
	Name    string
	Formats []string
}

func (e *ExportConfig) formats() []string {
	if len(e.Formats) == 0 {
		return []string{FormatCSV}
	}
	return e.Formats
}

func (e *ExportConfig) defaultFormat() string {
	return e.formats()[0]
}

func (e *ExportConfig) supports(format string) bool {
	if _, ok := renderers[format]; !ok {
		return false
	}
	for _, f := range e.formats() {
		if f == format {
			return true
		}
	}
	return false
}

func (e *ExportConfig) name() string {
	if e.Name == "" {
		return "table"
	}
	return e.Name
}

// BuildDataset renders records into rows keyed by column header, skipping excluded
// columns and the selection column.
func BuildDataset[T any](records []T, table Table[T], exclude []string) export.Dataset {
	skip := map[string]struct{}{SelectionColumn: {}}
	for _, name := range exclude {
		skip[name] = struct{}{}
	}

	var ds export.Dataset
	var columns []Column[T]
	for _, col := range table.Columns {
		if _, ok := skip[col.Name]; ok {
			continue
		}
		columns = append(columns, col)
		ds.Headers = append(ds.Headers, header(col))
	}
	ds.Rows = make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			if col.Value != nil {
				row[header(col)] = col.Value(rec)
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func header[T any](col Column[T]) string {
	if col.Label != "" {
		return col.Label
	}
	return col.Name
}

// Export serialises records into a file named <name>.<format>. Formats other than
// csv and xlsx fail with ErrUnsupportedExportFormat before anything is rendered.
func Export[T any](records []T, table Table[T], exclude []string, format, name string) (*File, error) {
	r, ok := renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedExportFormat, "export format "+strconv.Quote(format)+" is not supported")
	}
	dataset := BuildDataset(records, table, exclude)
	if len(dataset.Headers) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no visible columns to export")
	}
	body, err := r.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render export")
	}
	return &File{Name: name + "." + format, ContentType: r.ContentType(), Body: body}, nil
}

// export answers GET ?_export=<format>&_subset=<all|selected>. Any stored selection is
// consumed so it cannot leak into a later download.
func (v *View[T, C]) export(ctx context.Context, req Request) (Response, error) {
	if v.Export == nil {
		return Response{}, appErrors.Clone(appErrors.ErrInvalidRequest, "view "+v.Slug+" does not export")
	}
	format := req.Query.Get(ExportParam)
	if format == "" {
		format = v.Export.defaultFormat()
	}
	if !v.Export.supports(format) {
		return Response{}, appErrors.Clone(appErrors.ErrUnsupportedExportFormat, "export format "+strconv.Quote(format)+" is not supported")
	}

	sel, found, err := ConsumeSelection(req.Session, v.Table.Name)
	if err != nil {
		return Response{}, err
	}

	var records []T
	if Subset(req.Query.Get(SubsetParam)) == SubsetSelected {
		if found && sel.All {
			records, err = v.subsetRecords(ctx, SubsetAll, nil, req.Query)
		} else {
			records, err = v.subsetRecords(ctx, SubsetSelected, sel.IDs, req.Query)
		}
	} else {
		records, err = v.subsetRecords(ctx, SubsetAll, nil, req.Query)
	}
	if err != nil {
		return Response{}, err
	}

	hidden, err := v.hiddenColumns(req)
	if err != nil {
		return Response{}, err
	}
	file, err := Export(records, v.Table, hidden, format, v.Export.name())
	if err != nil {
		return Response{}, err
	}

	v.logger().Info("table export",
		zap.String("table", v.Table.Name),
		zap.String("format", format),
		zap.Int("rows", len(records)),
	)
	if v.Observer != nil {
		v.Observer.ObserveExport(v.Table.Name, format, len(records))
	}
	return FileResponse(file), nil
}

// hiddenColumns lists the toggleable columns the session has hidden.
func (v *View[T, C]) hiddenColumns(req Request) ([]string, error) {
	visible, err := loadColumns(req.Session, v.Table.columnSet())
	if err != nil {
		return nil, err
	}
	shown := make(map[string]struct{}, len(visible))
	for _, n := range visible {
		shown[n] = struct{}{}
	}
	var hidden []string
	for _, col := range v.Table.Columns {
		if col.Label == "" {
			continue
		}
		if _, ok := shown[col.Name]; !ok {
			hidden = append(hidden, col.Name)
		}
	}
	return hidden, nil
}
