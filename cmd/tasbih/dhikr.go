package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/tasbih/internal/model"
	"github.com/verte-zerg/tasbih/internal/stats"
)

var (
	dhikrCategory string

	customPhrase          string
	customTransliteration string
	customTranslation     string
	customCount           int
	customCategory        string
)

func newDhikrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dhikr",
		Short: "Browse the dhikr catalog",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List dhikr",
		Args:  cobra.NoArgs,
		RunE:  runDhikrListCmd,
	}
	list.Flags().StringVar(&dhikrCategory, "category", "", "only show one category")
	cmd.AddCommand(list)
	cmd.AddCommand(&cobra.Command{
		Use:   "show <dhikr-id>",
		Short: "Show one dhikr",
		Args:  cobra.ExactArgs(1),
		RunE:  runDhikrShowCmd,
	})
	return cmd
}

func runDhikrListCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	entries := a.catalog.All()
	if dhikrCategory != "" {
		entries = a.catalog.ByCategory(model.ParseCategory(dhikrCategory))
	}
	favorites, err := a.store.ListFavorites(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}
	return writeDhikrTable(cmd.OutOrStdout(), entries, a.session.Dhikr().ID, favorites)
}

func writeDhikrTable(w io.Writer, entries []model.Dhikr, activeID string, favorites []string) error {
	fav := make(map[string]bool, len(favorites))
	for _, id := range favorites {
		fav[id] = true
	}
	rows := make([][]string, 0, len(entries))
	for _, d := range entries {
		mark := ""
		if d.ID == activeID {
			mark = "*"
		}
		if fav[d.ID] {
			mark += "★"
		}
		rows = append(rows, []string{mark, d.ID, d.Transliteration, strconv.Itoa(d.Count), string(d.Category)})
	}
	for _, line := range stats.FormatTable([]string{"", "ID", "Dhikr", "Count", "Category"}, rows, map[int]bool{3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runDhikrShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	d, err := a.catalog.Lookup(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("%w: %s", err, args[0])
	}
	md := dhikrMarkdown(d)
	out := md
	if isatty.IsTerminal(os.Stdout.Fd()) {
		if rendered, err := glamour.Render(md, "dark"); err == nil {
			out = rendered
		}
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
	return err
}

func dhikrMarkdown(d model.Dhikr) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Phrase)
	if d.Transliteration != "" {
		fmt.Fprintf(&b, "**%s**\n\n", d.Transliteration)
	}
	if d.Translation != "" {
		fmt.Fprintf(&b, "> %s\n\n", d.Translation)
	}
	fmt.Fprintf(&b, "- Recommended count: %d\n- Category: %s\n- ID: `%s`\n", d.Count, d.Category, d.ID)
	if d.Custom {
		b.WriteString("- Custom dhikr\n")
	}
	return b.String()
}

func newCustomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custom",
		Short: "Manage custom dhikr (premium)",
	}
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a custom dhikr",
		Args:  cobra.NoArgs,
		RunE:  runCustomAddCmd,
	}
	add.Flags().StringVar(&customPhrase, "phrase", "", "Arabic phrase")
	add.Flags().StringVar(&customTransliteration, "transliteration", "", "transliteration")
	add.Flags().StringVar(&customTranslation, "translation", "", "translation")
	add.Flags().IntVar(&customCount, "count", 33, "recommended count")
	add.Flags().StringVar(&customCategory, "category", string(model.CategoryGeneral), "category")
	cmd.AddCommand(add)
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List custom dhikr",
		Args:  cobra.NoArgs,
		RunE:  runCustomListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <dhikr-id>",
		Short: "Delete a custom dhikr",
		Args:  cobra.ExactArgs(1),
		RunE:  runCustomDeleteCmd,
	})
	return cmd
}

func runCustomAddCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	if err := a.premium.Require(ctx); err != nil {
		return err
	}
	if customPhrase == "" && isatty.IsTerminal(os.Stdin.Fd()) {
		if err := customDhikrForm().Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				logErrf("Cancelled.\n")
				return nil
			}
			return fmt.Errorf("form error: %w", err)
		}
	}
	entry, err := customDhikrFromFlags()
	if err != nil {
		return err
	}
	saved, err := a.store.AddCustomDhikr(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to save custom dhikr: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", saved.ID, saved.Transliteration)
	return err
}

func customDhikrForm() *huh.Form {
	count := strconv.Itoa(customCount)
	options := make([]huh.Option[string], 0, len(model.Categories))
	for _, c := range model.Categories {
		options = append(options, huh.NewOption(string(c), string(c)))
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Arabic phrase").Value(&customPhrase).Validate(func(v string) error {
			if strings.TrimSpace(v) == "" {
				return errors.New("phrase is required")
			}
			return nil
		}),
		huh.NewInput().Title("Transliteration").Value(&customTransliteration),
		huh.NewInput().Title("Translation").Value(&customTranslation),
		huh.NewInput().Title("Recommended count").Value(&count).Validate(func(v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 1 {
				return errors.New("count must be a whole number >= 1")
			}
			customCount = n
			return nil
		}),
		huh.NewSelect[string]().Title("Category").Options(options...).Value(&customCategory),
	))
}

// customDhikrFromFlags builds the entry from flag values, normalizing text to
// NFC so that visually identical phrases compare equal.
func customDhikrFromFlags() (model.CustomDhikr, error) {
	phrase := norm.NFC.String(strings.TrimSpace(customPhrase))
	if phrase == "" {
		return model.CustomDhikr{}, fmt.Errorf("--phrase is required")
	}
	if customCount < 1 {
		return model.CustomDhikr{}, fmt.Errorf("--count must be >= 1")
	}
	return model.CustomDhikr{
		Phrase:          phrase,
		Transliteration: norm.NFC.String(strings.TrimSpace(customTransliteration)),
		Translation:     norm.NFC.String(strings.TrimSpace(customTranslation)),
		Count:           customCount,
		Category:        model.ParseCategory(customCategory),
	}, nil
}

func runCustomListCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	custom, err := a.store.ListCustomDhikr(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to load custom dhikr: %w", err)
	}
	if len(custom) == 0 {
		logErrf("No custom dhikr yet. Add one with: tasbih custom add\n")
		return nil
	}
	entries := make([]model.Dhikr, len(custom))
	for i, c := range custom {
		entries[i] = c.Dhikr()
	}
	return writeDhikrTable(cmd.OutOrStdout(), entries, a.session.Dhikr().ID, nil)
}

func runCustomDeleteCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	id := strings.TrimSpace(args[0])
	if err := a.store.DeleteCustomDhikr(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	if a.session.Dhikr().ID == id {
		if err := a.reloadCatalog(ctx); err != nil {
			return err
		}
		if err := a.session.SelectDhikr(ctx, a.catalog.First()); err != nil {
			return err
		}
		logErrf("Deleted the active dhikr; switched to %s.\n", a.catalog.First().ID)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return err
}

func newFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite [dhikr-id]",
		Short: "Toggle a favorite, or list favorites without an argument",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFavoriteCmd,
	}
}

func runFavoriteCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		ids, err := a.store.ListFavorites(ctx)
		if err != nil {
			return fmt.Errorf("failed to load favorites: %w", err)
		}
		for _, id := range ids {
			if _, err := fmt.Fprintf(out, "%s\t%s\n", id, a.label(id)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	}

	d, err := a.catalog.Lookup(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("%w: %s", err, args[0])
	}
	fav, err := a.store.ToggleFavorite(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}
	state := "removed from"
	if fav {
		state = "added to"
	}
	_, err = fmt.Fprintf(out, "%s %s favorites\n", d.ID, state)
	return err
}
