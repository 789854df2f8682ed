package command

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Browse categories",
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "Browse genres",
}

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Browse titles",
}

var listCategoriesCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := GetAuthenticatedClient().ListCategories(ctx, search, page)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		printCatalog("categories", result)
		return nil
	},
}

var listGenresCmd = &cobra.Command{
	Use:   "list",
	Short: "List genres",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := GetAuthenticatedClient().ListGenres(ctx, search, page)
		if err != nil {
			return fmt.Errorf("failed to list genres: %w", err)
		}
		printCatalog("genres", result)
		return nil
	},
}

var listTitlesCmd = &cobra.Command{
	Use:   "list",
	Short: "List titles, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f client.TitleFilter
		f.Category, _ = cmd.Flags().GetString("category")
		f.Genre, _ = cmd.Flags().GetString("genre")
		f.Name, _ = cmd.Flags().GetString("name")
		f.Year, _ = cmd.Flags().GetInt("year")
		f.Page, _ = cmd.Flags().GetInt("page")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := GetAuthenticatedClient().ListTitles(ctx, f)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}

		if len(result.Data) == 0 {
			fmt.Println("No titles found.")
			return nil
		}

		fmt.Printf("Titles (page %d of %d, %d total):\n\n", result.Page, result.TotalPages, result.Total)
		for _, t := range result.Data {
			rating := "-"
			if t.Rating != nil {
				rating = fmt.Sprintf("%.2f", *t.Rating)
			}
			category := "-"
			if t.Category != nil {
				category = t.Category.Name
			}
			genres := make([]string, len(t.Genre))
			for i, g := range t.Genre {
				genres[i] = g.Slug
			}

			color.Cyan("[%d] %s (%d)", t.ID, t.Name, t.Year)
			fmt.Printf("     rating: %s | category: %s | genres: %s\n", rating, category, strings.Join(genres, ", "))
		}
		return nil
	},
}

func printCatalog(kind string, result *dto.PaginatedResponse[dto.CatalogItemResponse]) {
	if len(result.Data) == 0 {
		fmt.Printf("No %s found.\n", kind)
		return
	}
	fmt.Printf("%s (page %d of %d, %d total):\n\n", strings.ToUpper(kind[:1])+kind[1:], result.Page, result.TotalPages, result.Total)
	for _, item := range result.Data {
		fmt.Printf("%-20s %s\n", item.Slug, item.Name)
	}
}

func init() {
	categoriesCmd.AddCommand(listCategoriesCmd)
	genresCmd.AddCommand(listGenresCmd)
	titlesCmd.AddCommand(listTitlesCmd)

	for _, c := range []*cobra.Command{listCategoriesCmd, listGenresCmd} {
		c.Flags().StringP("search", "s", "", "Filter by name")
		c.Flags().IntP("page", "p", 1, "Page number")
	}

	listTitlesCmd.Flags().String("category", "", "Category slug")
	listTitlesCmd.Flags().String("genre", "", "Genre slug")
	listTitlesCmd.Flags().String("name", "", "Part of the title name")
	listTitlesCmd.Flags().Int("year", 0, "Release year")
	listTitlesCmd.Flags().IntP("page", "p", 1, "Page number")
}
