package debugui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/helloxr/scene"
)

// EntityRow is one line of the entity browser.
type EntityRow struct {
	ID         scene.EntityId
	Name       string
	Kind       scene.Kind
	Parent     string
	Components []string
}

const (
	SortByID = iota
	SortByName
	SortByKind
	SortByComponents
)

// EntityRows lists live entities whose id, name, kind or component names contain filter,
// sorted by column.
func EntityRows(storage *scene.Storage, filter string, column int, ascending bool) []EntityRow {
	filter = strings.ToLower(filter)
	rows := make([]EntityRow, 0, storage.Len())
	for id := range storage.Entities() {
		types := storage.ComponentTypes(id)
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = t.Name()
		}
		row := EntityRow{ID: id, Name: storage.Name(id), Kind: storage.Kind(id), Components: names}
		if p := storage.Parent(id); p.Valid() {
			row.Parent = storage.Name(p)
		}
		if filter != "" && !row.matches(filter) {
			continue
		}
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b EntityRow) int {
		var c int
		switch column {
		case SortByName:
			c = strings.Compare(a.Name, b.Name)
		case SortByKind:
			c = int(a.Kind) - int(b.Kind)
		case SortByComponents:
			c = len(a.Components) - len(b.Components)
		default:
			c = int(a.ID.Index()) - int(b.ID.Index())
		}
		if !ascending {
			c = -c
		}
		return c
	})
	return rows
}

func (r EntityRow) matches(filter string) bool {
	return strings.Contains(r.ID.String(), filter) ||
		strings.Contains(strings.ToLower(r.Name), filter) ||
		strings.Contains(r.Kind.String(), filter) ||
		strings.Contains(strings.ToLower(strings.Join(r.Components, " ")), filter)
}

// EntityBrowser is a filterable, sortable, paged table of entities.
type EntityBrowser struct {
	selected      scene.EntityId
	filter        string
	sortColumn    int
	sortAscending bool
	pageSize      int
	page          int
}

func NewEntityBrowser(pageSize int) *EntityBrowser {
	return &EntityBrowser{sortAscending: true, pageSize: pageSize}
}

func (eb *EntityBrowser) Selected() scene.EntityId {
	return eb.selected
}

func (eb *EntityBrowser) Select(id scene.EntityId) {
	eb.selected = id
}

func (eb *EntityBrowser) Render(storage *scene.Storage) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	if !storage.Alive(eb.selected) {
		eb.selected = 0
	}

	imgui.InputTextWithHint("##search", "Search...", &eb.filter, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filter = ""
		eb.page = 0
	}

	rows := EntityRows(storage, eb.filter, eb.sortColumn, eb.sortAscending)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("ID")
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Kind")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Parent")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSpecs.SetSpecsDirty(false)
		}

		start := min(eb.page*eb.pageSize, len(rows))
		end := min(start+eb.pageSize, len(rows))
		for _, row := range rows[start:end] {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			if imgui.SelectableBoolV(row.ID.String(), eb.selected == row.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = row.ID
			}
			imgui.TableNextColumn()
			imgui.Text(row.Name)
			imgui.TableNextColumn()
			imgui.Text(row.Kind.String())
			imgui.TableNextColumn()
			imgui.Text(strings.Join(row.Components, ", "))
			imgui.TableNextColumn()
			imgui.Text(row.Parent)
		}
		imgui.EndTable()
	}

	if len(rows) > eb.pageSize {
		pages := (len(rows) + eb.pageSize - 1) / eb.pageSize
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.page+1, pages, len(rows)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.page > 0 {
			eb.page--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.page < pages-1 {
			eb.page++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(rows)))
	}

	imgui.End()
}
