// Command annokit is the CLI for annotation snapshots.
// It inspects transcriptions, checks them against file format profiles,
// derives tiers, and maintains a searchable annotation catalog.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/annokit/core/ann"
	"github.com/FocuswithJustin/annokit/core/formats"
	"github.com/FocuswithJustin/annokit/internal/api"
	"github.com/FocuswithJustin/annokit/internal/catalog"
	"github.com/FocuswithJustin/annokit/internal/config"
	"github.com/FocuswithJustin/annokit/internal/logging"
	"github.com/FocuswithJustin/annokit/internal/snapshot"
	"github.com/FocuswithJustin/annokit/internal/validation"
)

const version = "0.1.0"

// CLI defines the command-line interface for annokit.
var CLI struct {
	// Global flags
	Config   string `name:"config" short:"c" help:"Path to the YAML configuration file" type:"path"`
	LogLevel string `name:"log-level" help:"Override the configured log level (debug, info, warn, error)"`

	Info     InfoCmd      `cmd:"" help:"Display a transcription summary"`
	Check    CheckCmd     `cmd:"" help:"Report what snapshots lose in a file format"`
	Validate ValidateCmd  `cmd:"" help:"Validate every tier against a capability profile"`
	Labels   LabelsCmd    `cmd:"" help:"Print or search the labels of a tier"`
	Segment  SegmentCmd   `cmd:"" help:"Derive an interval tier from the speech runs of a tier"`
	Gaps     GapsCmd      `cmd:"" help:"Fill the gaps of an interval tier"`
	Vocab    VocabCmd     `cmd:"" help:"Build the controlled vocabulary of a tier"`
	Formats  FormatsCmd   `cmd:"" help:"List the known file formats"`
	Catalog  CatalogGroup `cmd:"" help:"Annotation catalog operations"`
	Serve    ServeCmd     `cmd:"" help:"Serve the catalog and format profiles over a REST API"`
	Version  VersionCmd   `cmd:"" help:"Print version information"`
}

// App carries what every command needs.
type App struct {
	Config *config.Config
	Out    io.Writer
}

func newApp(configPath, logLevel string) (*App, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	logging.InitLoggerTo(os.Stderr, cfg.LogLevel(), cfg.LogFormat())
	if err := cfg.RegisterProfiles(); err != nil {
		return nil, err
	}
	return &App{Config: cfg, Out: os.Stdout}, nil
}

func (app *App) printf(format string, args ...any) {
	fmt.Fprintf(app.Out, format, args...)
}

func (app *App) printJSON(v any) error {
	enc := json.NewEncoder(app.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadSnapshot loads a snapshot and logs it with its path as source.
func loadSnapshot(ctx context.Context, path string) (*ann.Transcription, error) {
	start := time.Now()
	trs, err := snapshot.Load(path)
	if err != nil {
		return nil, err
	}
	logging.SnapshotLoaded(logging.WithSource(ctx, path), trs.Name(), trs.Len(), time.Since(start))
	return trs, nil
}

func findTier(trs *ann.Transcription, name string) (*ann.Tier, error) {
	t := trs.Find(name, false)
	if t == nil {
		return nil, fmt.Errorf("tier %q not found in %q", name, trs.Name())
	}
	return t, nil
}

// InfoCmd displays a transcription summary.
type InfoCmd struct {
	Snapshot string `arg:"" help:"Path to snapshot" type:"existingfile"`
	JSON     bool   `help:"Output as JSON"`
}

// Info is the summary printed by the info command.
type Info struct {
	Name         string          `json:"name"`
	ID           string          `json:"id"`
	Begin        float64         `json:"begin"`
	End          float64         `json:"end"`
	Media        []string        `json:"media,omitempty"`
	Vocabularies []string        `json:"vocabularies,omitempty"`
	Tiers        []TierInfo      `json:"tiers"`
	Digest       snapshot.Digest `json:"digest"`
}

// TierInfo summarizes one tier.
type TierInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Annotations int    `json:"annotations"`
	Parent      string `json:"parent,omitempty"`
	Link        string `json:"link,omitempty"`
	Vocabulary  string `json:"vocabulary,omitempty"`
}

func buildInfo(trs *ann.Transcription) (*Info, error) {
	digest, err := snapshot.Hash(trs)
	if err != nil {
		return nil, err
	}
	info := &Info{Name: trs.Name(), ID: trs.ID(), Digest: digest}
	if lo, ok := trs.MinLoc(); ok {
		info.Begin = lo.Midpoint()
	}
	if hi, ok := trs.MaxLoc(); ok {
		info.End = hi.Midpoint()
	}
	for _, m := range trs.Media() {
		info.Media = append(info.Media, m.URL())
	}
	for _, v := range trs.CtrlVocabs() {
		info.Vocabularies = append(info.Vocabularies, v.Name())
	}
	for _, t := range trs.Tiers() {
		ti := TierInfo{Name: t.Name(), Kind: t.Kind().String(), Annotations: t.Len()}
		if p, typ, ok := trs.Hierarchy().Parent(t); ok {
			ti.Parent, ti.Link = p.Name(), typ.String()
		}
		if v := t.CtrlVocab(); v != nil {
			ti.Vocabulary = v.Name()
		}
		info.Tiers = append(info.Tiers, ti)
	}
	return info, nil
}

func (c *InfoCmd) Run(app *App) error {
	trs, err := loadSnapshot(context.Background(), c.Snapshot)
	if err != nil {
		return err
	}
	info, err := buildInfo(trs)
	if err != nil {
		return err
	}
	if c.JSON {
		return app.printJSON(info)
	}

	app.printf("Transcription: %s\n", info.Name)
	app.printf("  ID: %s\n", info.ID)
	app.printf("  Extent: %.3f - %.3f\n", info.Begin, info.End)
	if len(info.Media) > 0 {
		app.printf("  Media: %s\n", strings.Join(info.Media, ", "))
	}
	if len(info.Vocabularies) > 0 {
		app.printf("  Vocabularies: %s\n", strings.Join(info.Vocabularies, ", "))
	}
	app.printf("  BLAKE3: %s\n", info.Digest.BLAKE3)
	app.printf("Tiers (%d):\n", len(info.Tiers))
	for _, t := range info.Tiers {
		app.printf("  %-20s %-9s %6d", t.Name, t.Kind, t.Annotations)
		if t.Parent != "" {
			app.printf("  %s of %s", t.Link, t.Parent)
		}
		app.printf("\n")
	}
	return nil
}

// CheckCmd reports what snapshots lose in a file format.
type CheckCmd struct {
	Snapshots []string `arg:"" help:"Paths to snapshots" type:"existingfile"`
	Format    string   `help:"Format profile (default: configured profile)"`
	Jobs      int      `help:"Snapshots checked concurrently" default:"4"`
	JSON      bool     `help:"Output as JSON"`
}

func (c *CheckCmd) Run(app *App) error {
	format := c.Format
	if format == "" {
		format = app.Config.Profile
	}
	profile, err := formats.Get(format)
	if err != nil {
		return err
	}

	reports := make([]*formats.Report, len(c.Snapshots))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(c.Jobs, 1))
	for i, path := range c.Snapshots {
		i, path := i, path
		g.Go(func() error {
			trs, err := loadSnapshot(ctx, path)
			if err != nil {
				return err
			}
			r, err := formats.Check(trs, profile)
			if err != nil {
				return err
			}
			logging.CheckResult(logging.WithSource(ctx, path), r.Format, string(r.LossClass), len(r.LostElements))
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if c.JSON {
		return app.printJSON(reports)
	}
	for i, r := range reports {
		app.printf("%s: %s in %s\n", c.Snapshots[i], r.LossClass, r.Format)
		for _, e := range r.LostElements {
			app.printf("  [%s] %s %s: %s\n", e.Class, e.ElementType, e.Path, e.Reason)
		}
		for _, w := range r.Warnings {
			app.printf("  warning: %s\n", w)
		}
	}
	return nil
}

// ValidateCmd checks every tier against a capability profile.
type ValidateCmd struct {
	Snapshot string `arg:"" help:"Path to snapshot" type:"existingfile"`
	Format   string `help:"Format profile (default: the snapshot's own capabilities)"`
}

func (c *ValidateCmd) Run(app *App) error {
	trs, err := loadSnapshot(context.Background(), c.Snapshot)
	if err != nil {
		return err
	}
	caps := trs.Capabilities()
	if c.Format != "" {
		p, err := formats.Get(c.Format)
		if err != nil {
			return err
		}
		caps = p.Capabilities
	}

	var errs []error
	for _, t := range trs.Tiers() {
		for _, err := range t.Validate(caps) {
			errs = append(errs, fmt.Errorf("tier %q: %w", t.Name(), err))
		}
	}
	for _, err := range errs {
		app.printf("%v\n", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d problem(s) found", len(errs))
	}
	app.printf("%s: valid\n", c.Snapshot)
	return nil
}

// LabelsCmd prints or searches the labels of a tier.
type LabelsCmd struct {
	Snapshot  string `arg:"" help:"Path to snapshot" type:"existingfile"`
	Tier      string `required:"" help:"Tier name (case-insensitive)"`
	Alt       bool   `help:"Print alternative tags"`
	Predicate string `help:"Tag predicate (exact, icontains, regexp, similar, ...)" default:"exact"`
	Value     string `help:"Only print annotations with a tag matching the predicate"`
	Not       bool   `help:"Negate the predicate"`
}

func (c *LabelsCmd) Run(app *App) error {
	trs, err := loadSnapshot(context.Background(), c.Snapshot)
	if err != nil {
		return err
	}
	tier, err := findTier(trs, c.Tier)
	if err != nil {
		return err
	}

	anns := tier.Annotations()
	if c.Value != "" {
		fn, ok := ann.TagFuncByName(c.Predicate)
		if !ok {
			return fmt.Errorf("unknown predicate %q", c.Predicate)
		}
		anns = tier.Match([]ann.Predicate{{Func: fn, Value: c.Value, Not: c.Not}}, ann.LogicAnd)
	}
	sep, empty := app.Config.Labels.Separator, app.Config.Labels.Empty
	for _, a := range anns {
		app.printf("%.3f\t%.3f\t%s\n",
			a.LowestLocalization().Midpoint(), a.HighestLocalization().Midpoint(),
			a.SerializeLabels(sep, empty, c.Alt))
	}
	return nil
}

// SegmentCmd derives an interval tier from the speech runs of a tier.
type SegmentCmd struct {
	Snapshot string `arg:"" help:"Path to snapshot" type:"existingfile"`
	Tier     string `required:"" help:"Source tier name (case-insensitive)"`
	Name     string `help:"Name of the new tier (default: <tier>-IPUs)"`
	Out      string `required:"" help:"Output snapshot path" type:"path"`
}

func (c *SegmentCmd) Run(app *App) error {
	if err := validation.ValidateSnapshotPath(c.Out); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	trs, err := loadSnapshot(context.Background(), c.Snapshot)
	if err != nil {
		return err
	}
	tier, err := findTier(trs, c.Tier)
	if err != nil {
		return err
	}

	separators := app.Config.SymbolTable().Contents(ann.SymbolSilence, ann.SymbolPause, ann.SymbolDummy)
	segments, err := tier.ExportToIntervals(separators)
	if err != nil {
		return err
	}
	name := c.Name
	if name == "" {
		name = tier.Name() + "-IPUs"
	}
	if err := segments.SetName(name); err != nil {
		return err
	}
	if err := trs.Append(segments); err != nil {
		return err
	}
	if err := snapshot.Save(c.Out, trs); err != nil {
		return err
	}
	app.printf("Created tier %s with %d segments: %s\n", segments.Name(), segments.Len(), c.Out)
	return nil
}

// GapsCmd fills the gaps of an interval tier with unlabeled intervals.
type GapsCmd struct {
	Snapshot string  `arg:"" help:"Path to snapshot" type:"existingfile"`
	Tier     string  `required:"" help:"Tier name (case-insensitive)"`
	From     float64 `help:"Start of the range to fill (default: 0)"`
	To       float64 `help:"End of the range to fill (default: end of the transcription)"`
	Out      string  `required:"" help:"Output snapshot path" type:"path"`
}

func (c *GapsCmd) Run(app *App) error {
	if err := validation.ValidateSnapshotPath(c.Out); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	trs, err := loadSnapshot(context.Background(), c.Snapshot)
	if err != nil {
		return err
	}
	tier, err := findTier(trs, c.Tier)
	if err != nil {
		return err
	}

	from, err := ann.NewPoint(c.From, 0)
	if err != nil {
		return err
	}
	to, ok := trs.MaxLoc()
	if c.To > 0 {
		if to, err = ann.NewPoint(c.To, 0); err != nil {
			return err
		}
	} else if !ok {
		to = from
	}
	n, err := tier.FillGaps(from, to)
	if err != nil {
		return err
	}
	if err := snapshot.Save(c.Out, trs); err != nil {
		return err
	}
	app.printf("Filled %d gap(s) in %s: %s\n", n, tier.Name(), c.Out)
	return nil
}

// VocabCmd builds the controlled vocabulary of a tier from its labels.
type VocabCmd struct {
	Snapshot string `arg:"" help:"Path to snapshot" type:"existingfile"`
	Tier     string `required:"" help:"Tier name (case-insensitive)"`
	Name     string `help:"Vocabulary name (default: v_<tier>)"`
	Out      string `help:"Save the snapshot with the vocabulary attached" type:"path"`
}

func (c *VocabCmd) Run(app *App) error {
	if c.Out != "" {
		if err := validation.ValidateSnapshotPath(c.Out); err != nil {
			return fmt.Errorf("invalid output path: %w", err)
		}
	}
	trs, err := loadSnapshot(context.Background(), c.Snapshot)
	if err != nil {
		return err
	}
	tier, err := findTier(trs, c.Tier)
	if err != nil {
		return err
	}
	v, err := tier.CreateCtrlVocab(c.Name)
	if err != nil {
		return err
	}

	app.printf("Vocabulary %s (%d entries):\n", v.Name(), v.Len())
	for _, e := range v.Entries() {
		app.printf("  %s\n", e.Tag.Content())
	}
	if c.Out != "" {
		if err := snapshot.Save(c.Out, trs); err != nil {
			return err
		}
		app.printf("Saved: %s\n", c.Out)
	}
	return nil
}

// FormatsCmd lists the known file formats.
type FormatsCmd struct {
	JSON bool `help:"Output as JSON"`
}

func (c *FormatsCmd) Run(app *App) error {
	profiles := formats.List()
	if c.JSON {
		return app.printJSON(profiles)
	}
	for _, p := range profiles {
		app.printf("%-10s %-24s %s\n", p.Name, strings.Join(p.Extensions, " "), p.Description)
	}
	return nil
}

// CatalogGroup contains annotation catalog operations.
type CatalogGroup struct {
	DB string `name:"db" help:"Catalog database path (default: configured catalog.path)" type:"path"`

	Add    CatalogAddCmd    `cmd:"" help:"Index snapshots"`
	Search CatalogSearchCmd `cmd:"" help:"Search indexed annotations"`
	List   CatalogListCmd   `cmd:"" help:"List indexed snapshots"`
	Remove CatalogRemoveCmd `cmd:"" help:"Remove a snapshot from the catalog"`
}

func (app *App) openCatalog() (*catalog.Catalog, error) {
	path := app.Config.Catalog.Path
	if CLI.Catalog.DB != "" {
		path = CLI.Catalog.DB
	}
	return catalog.Open(path, app.Config.Labels.Separator)
}

// CatalogAddCmd indexes snapshots.
type CatalogAddCmd struct {
	Snapshots []string `arg:"" help:"Paths to snapshots" type:"existingfile"`
}

func (c *CatalogAddCmd) Run(app *App) error {
	cat, err := app.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx := context.Background()
	var errs []error
	for _, path := range c.Snapshots {
		trs, err := loadSnapshot(ctx, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res, err := cat.Add(ctx, path, trs)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if res.Unchanged {
			app.printf("%s: unchanged\n", path)
		} else {
			app.printf("%s: %d annotations\n", path, res.Annotations)
		}
	}
	return errors.Join(errs...)
}

// CatalogSearchCmd searches indexed annotations.
type CatalogSearchCmd struct {
	Tag      string  `help:"Exact tag, alternatives included"`
	Contains string  `help:"Substring of the label text"`
	Tier     string  `help:"Tier name"`
	Path     string  `help:"Snapshot path"`
	From     float64 `help:"Overlapping from this time"`
	To       float64 `help:"Overlapping up to this time"`
	Limit    int     `help:"Maximum number of hits" default:"100"`
	JSON     bool    `help:"Output as JSON"`
}

func (c *CatalogSearchCmd) Run(app *App) error {
	cat, err := app.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	hits, err := cat.Search(context.Background(), catalog.Query{
		Tag:      c.Tag,
		Contains: c.Contains,
		Tier:     c.Tier,
		Path:     c.Path,
		From:     c.From,
		To:       c.To,
		Limit:    c.Limit,
	})
	if err != nil {
		return err
	}
	if c.JSON {
		return app.printJSON(hits)
	}
	for _, h := range hits {
		app.printf("%s\t%s\t%.3f\t%.3f\t%s\n", h.Path, h.Tier, h.Begin, h.End, h.Label)
	}
	return nil
}

// CatalogListCmd lists indexed snapshots.
type CatalogListCmd struct {
	JSON bool `help:"Output as JSON"`
}

func (c *CatalogListCmd) Run(app *App) error {
	cat, err := app.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	docs, err := cat.Documents(context.Background())
	if err != nil {
		return err
	}
	if c.JSON {
		return app.printJSON(docs)
	}
	for _, d := range docs {
		app.printf("%s\t%s\t%d tiers\t%s\n", d.Path, d.Name, d.Tiers, d.IndexedAt.Format(time.RFC3339))
	}
	return nil
}

// CatalogRemoveCmd removes a snapshot from the catalog.
type CatalogRemoveCmd struct {
	Path string `arg:"" help:"Snapshot path as indexed"`
}

func (c *CatalogRemoveCmd) Run(app *App) error {
	cat, err := app.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()
	return cat.Remove(context.Background(), c.Path)
}

// ServeCmd runs the REST API until interrupted.
type ServeCmd struct {
	Addr string `help:"Listen address (default: configured server.addr)"`
}

func (c *ServeCmd) apiConfig(app *App) api.Config {
	cfg := api.Config{
		Addr:              app.Config.Server.Addr,
		Version:           version,
		Profile:           app.Config.Profile,
		RateLimitRequests: app.Config.Server.RateLimit,
		RateLimitBurst:    app.Config.Server.RateLimitBurst,
		AllowedOrigins:    app.Config.Server.AllowedOrigins,
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	return cfg
}

func (c *ServeCmd) Run(app *App) error {
	cat, err := app.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.New(c.apiConfig(app), cat).ListenAndServe(ctx)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	info := catalog.GetDriverInfo()
	app.printf("annokit version %s\n", version)
	app.printf("  sqlite: %s (%s)\n", info.Package, info.DriverType)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("annokit"),
		kong.Description("annokit - linguistic annotation toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	app, err := newApp(CLI.Config, CLI.LogLevel)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(app)
	ctx.FatalIfErrorf(err)
}
