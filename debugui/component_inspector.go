package debugui

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/helloxr/scene"
)

// ComponentInspector shows the components of the selected entity and edits their
// fields in place.
type ComponentInspector struct{}

func (ci *ComponentInspector) Render(storage *scene.Storage, selected scene.EntityId) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	if !selected.Valid() {
		imgui.Text("No entity selected")
		return
	}
	if !storage.Alive(selected) {
		imgui.Text(fmt.Sprintf("Entity %s was disposed", selected))
		return
	}

	imgui.Text(fmt.Sprintf("%s  %q  (%s)", selected, storage.Name(selected), storage.Kind(selected)))
	if p := storage.Parent(selected); p.Valid() {
		imgui.Text("Parent: " + storage.Name(p))
	}
	if children := storage.Children(selected); len(children) > 0 {
		imgui.Text(fmt.Sprintf("Children: %d", len(children)))
	}
	imgui.Separator()

	for _, t := range storage.ComponentTypes(selected) {
		component := storage.GetComponent(selected, t)
		if component == nil {
			continue
		}
		if imgui.TreeNodeStr(t.Name()) {
			ci.renderStruct(component, reflect.ValueOf(component).Elem(), nil)
			imgui.TreePop()
		}
	}
}

func (ci *ComponentInspector) renderStruct(component any, val reflect.Value, path []int) {
	for _, f := range fields.get(val.Type()) {
		ci.renderField(component, f.Name, val.Field(f.Index), append(slices.Clone(path), f.Index))
	}
}

func (ci *ComponentInspector) renderField(component any, name string, val reflect.Value, path []int) {
	id := fmt.Sprintf("##%s%v", name, path)

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		label(name)
		if imgui.InputInt(id, &v) {
			SetField(component, path, int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		label(name)
		if imgui.InputInt(id, &v) && v >= 0 {
			SetField(component, path, uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		label(name)
		if imgui.InputFloat(id, &v) {
			SetField(component, path, v)
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			SetField(component, path, v)
		}

	case reflect.String:
		v := val.String()
		label(name)
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(id, "", &v, imgui.InputTextFlagsNone, nil) {
			SetField(component, path, v)
		}

	case reflect.Struct:
		if s, ok := val.Interface().(fmt.Stringer); ok {
			name = fmt.Sprintf("%s  %s", name, s)
		}
		if imgui.TreeNodeStr(name) {
			ci.renderStruct(component, val, path)
			imgui.TreePop()
		}

	case reflect.Slice, reflect.Map:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}

func label(name string) {
	imgui.Text(name + ":")
	imgui.SameLine()
	imgui.SetNextItemWidth(150)
}
