// Command pairrender renders a template with a document to an image file.
//
//	pairrender -template card.yaml -document doc.json -images ./photos -output card.png
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/content"
	"github.com/gogpu/pairkit/scene"
	"github.com/gogpu/pairkit/template"
)

func main() {
	var (
		tplPath = flag.String("template", "", "template file (.yaml, .yml or .json)")
		docPath = flag.String("document", "", "document JSON file (optional)")
		images  = flag.String("images", ".", "directory image references are resolved against")
		output  = flag.String("output", "out.png", "output file")
		format  = flag.String("format", "", "output format: png, jpeg, bmp or tiff (default: from output extension)")
		quality = flag.Int("quality", 90, "JPEG quality")
		scale   = flag.Int("scale", 1, "pixel scale, 1 to 8")
		list    = flag.Bool("list", false, "print the layers in paint order and exit")
		verbose = flag.Bool("v", false, "log debug output to stderr")
	)
	flag.Parse()

	if *verbose {
		pairkit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if *tplPath == "" {
		log.Fatal("pairrender: -template is required")
	}

	tpl, err := template.Load(*tplPath)
	if err != nil {
		log.Fatalf("pairrender: %v", err)
	}
	doc := scene.NewDocument()
	if *docPath != "" {
		snap, err := readDocument(*docPath)
		if err != nil {
			log.Fatalf("pairrender: %v", err)
		}
		doc.Load(snap)
	}

	asm := scene.NewAssembler(tpl, doc, content.NewDirLoader(*images))
	defer asm.Close()

	if *list {
		printLayers(asm.Render())
		return
	}

	f, err := outputFormat(*format, *output)
	if err != nil {
		log.Fatalf("pairrender: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := export(ctx, asm, *output, scene.ExportOptions{Format: f, Quality: *quality, Scale: *scale}); err != nil {
		log.Fatalf("pairrender: %v", err)
	}
	log.Printf("Rendered %s to %s (%s, scale %d)\n", tpl.ID, *output, f, *scale)
}

func readDocument(path string) (scene.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return scene.Snapshot{}, err
	}
	defer f.Close()
	snap, err := scene.DecodeSnapshot(f)
	if err != nil {
		return scene.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

func outputFormat(name, output string) (content.Format, error) {
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(output), ".")
	}
	if name == "" {
		return content.FormatPNG, nil
	}
	f, ok := content.ParseFormat(name)
	if !ok {
		return content.FormatUnknown, fmt.Errorf("unknown format %q", name)
	}
	return f, nil
}

func export(ctx context.Context, asm *scene.Assembler, path string, opts scene.ExportOptions) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return asm.Export(ctx, opts, scene.WriterSink{W: out})
}

func printLayers(tree *scene.Tree) {
	w, h := tree.PixelSize()
	fmt.Printf("canvas %dx%d\n", w, h)
	for i, n := range tree.Nodes {
		b := n.Primitive.Bounds()
		fmt.Printf("%3d  %-14s %-20s %.0f,%.0f %.0fx%.0f\n", i, n.Kind, n.LayerID, b.X, b.Y, b.Width, b.Height)
	}
}
