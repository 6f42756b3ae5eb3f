package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/storey"
	"github.com/gekko3d/storey/placement/engine"
	"github.com/gekko3d/storey/placement/nudge"
)

var errQuit = errors.New("quit")

const shellHelp = `commands:
  place <asset> [x y z] [floor]   place an asset, floors count from 1
  nudge <id> <dir>                one snap step along +x -x +y -y +z -z
  move <id> <dir>                 keyboard move, the active floor follows
  rotate <id> [steps]             turn by yaw steps
  floor <n>                       set the active floor
  tofloor <id> <n>                move a unit to floor n
  dup <id> [n]                    duplicate, optionally onto floor n
  material <id> [variant]         cycle or set the material
  rm <id>                         remove a unit
  undo                            restore the last recorded pose
  list                            print placed units
  floors                          print the floor roster
  save                            write the layout to the store
  export <file> | import <file>   write or replace from a JSON file
  quit`

// shell drives an engine from text commands, stepping the app after each
// one so metrics and config reloads keep up.
type shell struct {
	app *storey.App
	eng *engine.Engine
	out io.Writer
}

func newShell(app *storey.App, out io.Writer) *shell {
	eng, ok := storey.Resource[engine.Engine](app)
	if !ok {
		panic("shell needs PlacementModule")
	}
	return &shell{app: app, eng: eng, out: out}
}

func (s *shell) Run(ctx context.Context, in io.Reader) error {
	s.app.Step()
	fmt.Fprintf(s.out, "%d units on %d floors, type help for commands\n", s.eng.Units().Len(), s.eng.Floors().Count())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		err := s.exec(ctx, strings.Fields(line))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if !s.app.Step() {
			return nil
		}
	}
	return scanner.Err()
}

func (s *shell) exec(ctx context.Context, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, shellHelp)
	case "quit", "exit":
		return errQuit
	case "place":
		return s.place(ctx, args)
	case "nudge", "move":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s <id> <dir>", cmd)
		}
		dir, ok := nudge.ParseDirection(args[1])
		if !ok {
			return fmt.Errorf("unknown direction %q", args[1])
		}
		if cmd == "move" {
			return s.eng.Move(ctx, args[0], dir)
		}
		_, err := s.eng.Nudge(ctx, args[0], dir)
		return err
	case "rotate":
		if len(args) < 1 {
			return errors.New("usage: rotate <id> [steps]")
		}
		steps, err := optionalInt(args[1:], 1)
		if err != nil {
			return err
		}
		return s.eng.Rotate(ctx, args[0], float32(steps)*s.eng.Config().YawStep)
	case "floor":
		n, err := floorArg(args, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "active floor %d\n", s.eng.SetActiveFloor(n)+1)
	case "tofloor":
		if len(args) != 2 {
			return errors.New("usage: tofloor <id> <n>")
		}
		n, err := floorArg(args, 1)
		if err != nil {
			return err
		}
		moved, err := s.eng.MoveToFloor(ctx, args[0], n)
		if err == nil && !moved {
			fmt.Fprintf(s.out, "%s already on floor %d\n", args[0], n+1)
		}
		return err
	case "dup":
		if len(args) < 1 {
			return errors.New("usage: dup <id> [n]")
		}
		n := -1
		if len(args) > 1 {
			var err error
			if n, err = floorArg(args, 1); err != nil {
				return err
			}
		}
		if n < 0 {
			n = s.eng.Floors().Active()
		}
		u, err := s.eng.Duplicate(ctx, args[0], n)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "placed %s\n", u.ID)
	case "material":
		if len(args) < 1 {
			return errors.New("usage: material <id> [variant]")
		}
		u, ok := s.eng.Units().Get(args[0])
		if !ok {
			return fmt.Errorf("%q: %w", args[0], engine.ErrUnknownUnit)
		}
		variant := storey.NextMaterial(u.Material)
		if len(args) > 1 {
			variant = args[1]
		}
		return s.eng.SetMaterial(args[0], variant)
	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm <id>")
		}
		return s.eng.Remove(ctx, args[0])
	case "undo":
		if !s.eng.Undo(ctx) {
			fmt.Fprintln(s.out, "nothing to undo")
		}
	case "list":
		s.list()
	case "floors":
		for i, f := range s.eng.Floors().Floors() {
			fmt.Fprintf(s.out, "floor %d: base %.2f height %.2f ghost %.2f shown %t\n",
				i+1, s.eng.Floors().Base(i), f.Height, f.GhostOpacity, f.ShowGhost)
		}
	case "save":
		return s.eng.Save(ctx)
	case "export":
		if len(args) != 1 {
			return errors.New("usage: export <file>")
		}
		return storey.ExportLayout(s.eng, args[0])
	case "import":
		if len(args) != 1 {
			return errors.New("usage: import <file>")
		}
		n, err := storey.ImportLayout(ctx, s.eng, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "imported %d units\n", n)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (s *shell) place(ctx context.Context, args []string) error {
	if len(args) != 1 && len(args) != 4 && len(args) != 5 {
		return errors.New("usage: place <asset> [x y z] [floor]")
	}
	var at mgl32.Vec3
	n := s.eng.Floors().Active()
	if len(args) >= 4 {
		for i := range 3 {
			v, err := strconv.ParseFloat(args[1+i], 32)
			if err != nil {
				return fmt.Errorf("coordinate %q: %w", args[1+i], err)
			}
			at[i] = float32(v)
		}
		if len(args) == 5 {
			var err error
			if n, err = floorArg(args, 4); err != nil {
				return err
			}
		}
	}
	u, err := s.eng.Place(ctx, args[0], at, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "placed %s\n", u.ID)
	return nil
}

func (s *shell) list() {
	for _, u := range s.eng.Units().All() {
		mat := u.Material
		if mat == "" {
			mat = "-"
		}
		fmt.Fprintf(s.out, "%s %s floor %d at (%g, %g, %g) yaw %g material %s\n",
			u.ID, u.AssetRef, u.Floor+1,
			u.Position.X(), u.Position.Y(), u.Position.Z(),
			math.Round(float64(mgl32.RadToDeg(u.Yaw))), mat)
	}
}

// floorArg parses a 1-based floor number at args[i] into an index.
func floorArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errors.New("missing floor number")
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("bad floor number %q", args[i])
	}
	return n - 1, nil
}

func optionalInt(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	return strconv.Atoi(args[0])
}
