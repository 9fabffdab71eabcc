package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/watchlist"
)

var watchlistCmd = &cobra.Command{
	Use:     "watchlist",
	Aliases: []string{"wl"},
	Short:   "Manage the watchlist of candidate symbols",
	Long: `Manage watched symbols and their groups. The watchlist feeds the symbol
pool for backtests and live sessions.

Subcommands:
  add     - Watch a new symbol
  remove  - Stop watching a symbol
  list    - List watched symbols, optionally by group
  search  - Search symbols and names
  move    - Move a symbol to another group
  group   - Create or delete a group

Examples:
  autotrader watchlist add 600036.SH --name "China Merchants Bank" --price 32.50
  autotrader watchlist list --group banks
  autotrader watchlist move 600036.SH banks`,
}

var wlAddCmd = &cobra.Command{
	Use:   "add <symbol>",
	Short: "Watch a new symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistAdd,
}

var wlRemoveCmd = &cobra.Command{
	Use:   "remove <symbol>",
	Short: "Stop watching a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistRemove,
}

var wlListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched symbols",
	Args:  cobra.NoArgs,
	RunE:  runWatchlistList,
}

var wlSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search symbols and names",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistSearch,
}

var wlMoveCmd = &cobra.Command{
	Use:   "move <symbol> <group>",
	Short: "Move a symbol to another group",
	Args:  cobra.ExactArgs(2),
	RunE:  runWatchlistMove,
}

var wlGroupCmd = &cobra.Command{
	Use:   "group <create|delete> <name>",
	Short: "Create or delete a group",
	Args:  cobra.ExactArgs(2),
	RunE:  runWatchlistGroup,
}

var (
	wlPath      string
	wlAddName   string
	wlAddPrice  string
	wlAddNotes  string
	wlAddGroup  string
	wlListGroup string
	wlGroupDesc string
)

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(wlAddCmd, wlRemoveCmd, wlListCmd, wlSearchCmd, wlMoveCmd, wlGroupCmd)

	watchlistCmd.PersistentFlags().StringVarP(&wlPath, "file", "f", "./watchlist.json", "path to watchlist file")

	wlAddCmd.Flags().StringVar(&wlAddName, "name", "", "display name for the symbol")
	wlAddCmd.Flags().StringVar(&wlAddPrice, "price", "", "price at the time of adding")
	wlAddCmd.Flags().StringVar(&wlAddNotes, "notes", "", "free-form notes")
	wlAddCmd.Flags().StringVar(&wlAddGroup, "group", "", "group to add into (default group when empty)")

	wlListCmd.Flags().StringVar(&wlListGroup, "group", "", "limit to one group")

	wlGroupCmd.Flags().StringVar(&wlGroupDesc, "description", "", "group description (create only)")
}

func runWatchlistAdd(cmd *cobra.Command, args []string) error {
	w, err := watchlist.Load(wlPath)
	if err != nil {
		return err
	}

	s := watchlist.Stock{
		Symbol: args[0],
		Name:   wlAddName,
		Notes:  wlAddNotes,
		Group:  wlAddGroup,
	}
	if wlAddPrice != "" {
		price, err := decimal.NewFromString(wlAddPrice)
		if err != nil {
			return fmt.Errorf("bad price %q: %w", wlAddPrice, err)
		}
		s.AddedPrice = price
	}

	if err := w.Add(s); err != nil {
		return err
	}
	if err := w.Save(); err != nil {
		return err
	}
	fmt.Printf("✓ Watching %s\n", args[0])
	return nil
}

func runWatchlistRemove(cmd *cobra.Command, args []string) error {
	w, err := watchlist.Load(wlPath)
	if err != nil {
		return err
	}
	if !w.Remove(args[0]) {
		return fmt.Errorf("%s is not watched", args[0])
	}
	if err := w.Save(); err != nil {
		return err
	}
	fmt.Printf("✓ Removed %s\n", args[0])
	return nil
}

func runWatchlistList(cmd *cobra.Command, args []string) error {
	w, err := watchlist.Load(wlPath)
	if err != nil {
		return err
	}

	symbols := w.Symbols(wlListGroup)
	if len(symbols) == 0 {
		fmt.Println("No symbols watched.")
		return nil
	}
	for _, symbol := range symbols {
		s, _ := w.Get(symbol)
		fmt.Printf("%-12s %-24s group=%s", s.Symbol, s.Name, s.Group)
		if !s.AddedPrice.IsZero() {
			fmt.Printf(" added@%s", s.AddedPrice.StringFixed(2))
		}
		fmt.Println()
	}
	return nil
}

func runWatchlistSearch(cmd *cobra.Command, args []string) error {
	w, err := watchlist.Load(wlPath)
	if err != nil {
		return err
	}

	hits := w.Search(args[0])
	if len(hits) == 0 {
		fmt.Printf("No matches for %q\n", args[0])
		return nil
	}
	for _, s := range hits {
		fmt.Printf("%-12s %-24s group=%s\n", s.Symbol, s.Name, s.Group)
	}
	return nil
}

func runWatchlistMove(cmd *cobra.Command, args []string) error {
	w, err := watchlist.Load(wlPath)
	if err != nil {
		return err
	}
	if err := w.Move(args[0], args[1]); err != nil {
		return err
	}
	if err := w.Save(); err != nil {
		return err
	}
	fmt.Printf("✓ Moved %s to %s\n", args[0], args[1])
	return nil
}

func runWatchlistGroup(cmd *cobra.Command, args []string) error {
	w, err := watchlist.Load(wlPath)
	if err != nil {
		return err
	}

	switch args[0] {
	case "create":
		if err := w.CreateGroup(args[1], wlGroupDesc); err != nil {
			return err
		}
		fmt.Printf("✓ Created group %s\n", args[1])
	case "delete":
		if err := w.DeleteGroup(args[1]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted group %s\n", args[1])
	default:
		return fmt.Errorf("unknown group action %q (use create or delete)", args[0])
	}
	return w.Save()
}
