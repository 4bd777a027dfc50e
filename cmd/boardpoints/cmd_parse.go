package main

import (
	"fmt"

	"boardpoints/internal/points"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [caption...]",
	Short: "Show the points each label caption is worth",
	Long: `Parses label captions the same way board passes do and prints the total.

Example:
  boardpoints parse "3 points" "points: 5" "feature"`,
	Args: cobra.MinimumNArgs(1),
	RunE: parseCaptions,
}

func parseCaptions(cmd *cobra.Command, args []string) error {
	for _, caption := range args {
		n := points.Parse(caption)
		fmt.Printf("%-24q %s\n", caption, pointsStyle.Render(fmt.Sprintf("%d", n)))
	}
	fmt.Printf("%-24s %s\n", "total", pointsStyle.Render(fmt.Sprintf("%d", points.Sum(args...))))
	return nil
}
