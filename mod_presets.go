package storey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gekko3d/storey/placement/engine"
	"github.com/gekko3d/storey/placement/layout"
)

// ExportLayout writes the placed units to filename in the layout document
// format, indented for reading.
func ExportLayout(eng *engine.Engine, filename string) error {
	data, err := layout.Encode(eng.Records())
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	return os.WriteFile(filename, out.Bytes(), 0644)
}

// ImportLayout replaces the placed units with those stored in filename and
// saves the result. Records whose asset cannot be loaded are skipped.
func ImportLayout(ctx context.Context, eng *engine.Engine, filename string) (int, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, err
	}
	records, err := layout.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filename, err)
	}
	return eng.Import(ctx, records), nil
}

// Presets is the file the export and import bindings use.
type Presets struct {
	Path string
}

// PresetsModule binds export and import to the editor's key bindings. It
// needs EditorModule.
type PresetsModule struct {
	Path string
}

func (mod PresetsModule) Install(app *App, cmd *Commands) {
	path := mod.Path
	if path == "" {
		path = "layout-export.json"
	}
	cmd.AddResources(&Presets{Path: path})

	system := System(presetSystem).InStage(Update)
	if app.stateful {
		system = system.InState(OnExecute(StateEditing))
	} else {
		system = system.RunAlways()
	}
	app.UseSystem(system)
}

func presetSystem(cmd *Commands, input *Input, ed *Editor, eng *engine.Engine, presets *Presets) {
	log := cmd.app.Logger()
	if ed.Bindings.Triggered(input, "export") {
		if err := ExportLayout(eng, presets.Path); err != nil {
			log.Errorf("export: %v", err)
		} else {
			log.Infof("exported %d units to %s", eng.Units().Len(), presets.Path)
		}
	}
	if ed.Bindings.Triggered(input, "import") {
		n, err := ImportLayout(context.Background(), eng, presets.Path)
		if err != nil {
			log.Errorf("import: %v", err)
			return
		}
		log.Infof("imported %d units from %s", n, presets.Path)
	}
}
