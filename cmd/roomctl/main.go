package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/voidshard/room"
)

const desc = `Inspect & edit a room snapshot (the saved state of every placed object).

Snapshots are either a single json document or a sqlite database, see --backend.
Rooms are addressed by name within the configured world, eg. "Kitchen" for the
records under "World1/Kitchen/".`

var cli struct {
	Config   string `short:"c" help:"yaml config file" type:"path"`
	Snapshot string `short:"s" help:"snapshot file (overrides config)"`
	Backend  string `short:"b" help:"snapshot backend json|sqlite (overrides config)"`
	World    string `short:"w" help:"world name (overrides config)"`

	Ls struct {
		Room string `arg:"" optional:"" help:"list records of this room only"`
	} `cmd:"" help:"list rooms & records"`

	Render struct {
		Room   string  `arg:"" help:"room to draw"`
		Output string  `short:"o" help:"where to write the png, defaults to <room>.png"`
		Width  float64 `default:"1920" help:"room width in world units"`
		Height float64 `default:"1080" help:"room height in world units"`
		Scale  float64 `default:"0.5" help:"px per world unit"`
		Size   float64 `default:"64" help:"box size for records with no saved width/height"`
		Thumb  uint    `help:"also write a thumbnail no larger than this (px)"`
	} `cmd:"" help:"draw a room's records to a png"`

	Tmx struct {
		Room   string            `arg:"" help:"room to export"`
		Output string            `short:"o" help:"where to write the tmx, defaults to <room>.tmx"`
		Width  float64           `default:"1920" help:"room width in world units"`
		Height float64           `default:"1080" help:"room height in world units"`
		Tile   int               `default:"32" help:"tile size in px"`
		Size   float64           `default:"64" help:"object size for records with no saved width/height"`
		Props  map[string]string `short:"p" help:"set props on resulting map"`
	} `cmd:"" help:"export a room as a Tiled object layer"`

	Prune struct {
		Room string `arg:"" help:"room to forget"`
	} `cmd:"" help:"drop every record of a room, it'll be rebuilt from authored content on next visit"`
}

func main() {
	ctx := kong.Parse(&cli, kong.Name("roomctl"), kong.Description(desc))

	cfg, err := room.LoadConfig(cli.Config)
	if err != nil {
		panic(err)
	}
	if cli.Snapshot != "" {
		cfg.SnapshotPath = cli.Snapshot
	}
	if cli.Backend != "" {
		cfg.Backend = cli.Backend
	}
	if cli.World != "" {
		cfg.World = cli.World
	}

	store, err := room.NewStore(cfg, nil)
	if err != nil {
		panic(err)
	}
	if c, ok := store.(*room.SQLStore); ok {
		defer c.Close()
	}

	switch strings.Fields(ctx.Command())[0] {
	case "ls":
		ls(cfg, store)
	case "render":
		render(cfg, store)
	case "tmx":
		tmx(cfg, store)
	case "prune":
		prune(cfg, store)
	default:
		panic(ctx.Command())
	}
}

// ls prints every room with its record count, or the records of one room
func ls(cfg *room.Config, store room.Store) {
	doc := store.Load()

	if cli.Ls.Room != "" {
		for _, r := range doc.WithPrefix(room.RoomPrefix(cfg.World, cli.Ls.Room)) {
			tmpl := r.Template
			if tmpl == "" {
				tmpl = "(fixture)"
			}
			fmt.Printf("%s\t%s\t(%.1f, %.1f, %.1f)\n", r.Identity, tmpl, r.Position.X, r.Position.Y, r.Position.Z)
		}
		return
	}

	counts := map[string]int{}
	for _, p := range doc.Rooms {
		counts[p] = 0
	}
	for _, r := range doc.Records {
		parts := strings.SplitN(r.Identity, "/", 3)
		if len(parts) < 3 {
			continue
		}
		counts[room.RoomPrefix(parts[0], parts[1])]++
	}

	prefixes := []string{}
	for p := range counts {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		fmt.Printf("%s\t%d\n", p, counts[p])
	}
}

func render(cfg *room.Config, store room.Store) {
	if cli.Render.Output == "" {
		cli.Render.Output = cli.Render.Room + ".png"
	}

	prefix := room.RoomPrefix(cfg.World, cli.Render.Room)
	recs := store.Load().WithPrefix(prefix)
	bounds := room.RectAt(0, 0, cli.Render.Width, cli.Render.Height)

	items := room.DrawablesFromRecords(recs, prefix, bounds, cli.Render.Size)
	img := room.Render(items, cli.Render.Width, cli.Render.Height, cli.Render.Scale)

	err := room.SavePNG(cli.Render.Output, img)
	if err != nil {
		panic(err)
	}
	fmt.Printf("wrote %s (%d objects)\n", cli.Render.Output, len(items))

	if cli.Render.Thumb > 0 {
		out := strings.TrimSuffix(cli.Render.Output, ".png") + ".thumb.png"
		err = room.SavePNG(out, room.Thumbnail(img, cli.Render.Thumb))
		if err != nil {
			panic(err)
		}
		fmt.Printf("wrote %s\n", out)
	}
}

func tmx(cfg *room.Config, store room.Store) {
	if cli.Tmx.Output == "" {
		cli.Tmx.Output = cli.Tmx.Room + ".tmx"
	}

	prefix := room.RoomPrefix(cfg.World, cli.Tmx.Room)
	recs := store.Load().WithPrefix(prefix)
	bounds := room.RectAt(0, 0, cli.Tmx.Width, cli.Tmx.Height)

	m := room.NewMap(bounds, cli.Tmx.Tile)
	m.AddRoom(prefix, bounds, recs, cli.Tmx.Size)
	m.SetMapProperties(room.ParseProperties(cli.Tmx.Props))

	err := m.WriteFile(cli.Tmx.Output)
	if err != nil {
		panic(err)
	}
	fmt.Printf("wrote %s (%d objects)\n", cli.Tmx.Output, len(recs))
}

func prune(cfg *room.Config, store room.Store) {
	doc := store.Load()
	n := doc.Prune(room.RoomPrefix(cfg.World, cli.Prune.Room))

	err := store.Save(doc)
	if err != nil {
		panic(err)
	}
	fmt.Fprintf(os.Stdout, "removed %d records\n", n)
}
