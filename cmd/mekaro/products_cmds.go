package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mekaroindia/mekaro/internal/catalog"
)

func (a *app) productsCmd() *cobra.Command {
	var (
		page     int
		search   string
		category int64
		sort     string
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ordering := catalog.OrderingDefault
			switch sort {
			case "price-asc":
				ordering = catalog.OrderingPriceAsc
			case "price-desc":
				ordering = catalog.OrderingPriceDesc
			case "":
			default:
				return fmt.Errorf("unknown sort %q (use price-asc or price-desc)", sort)
			}

			result := a.catalog.Fetch(cmd.Context(), catalog.Query{
				Page:       page,
				Search:     search,
				CategoryID: category,
				Ordering:   ordering,
			})

			if len(result.Products) == 0 {
				fmt.Println("No products found.")
				return nil
			}
			for _, p := range result.Products {
				fmt.Printf("%6d  %-40s  ₹%s  (stock %d)\n", p.ID, p.Title, p.Price.StringFixed(2), p.Stock)
			}
			fmt.Printf("Page %d of %d\n", page, result.TotalPages)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&search, "search", "", "search query")
	cmd.Flags().Int64Var(&category, "category", 0, "category id filter")
	cmd.Flags().StringVar(&sort, "sort", "", "price-asc or price-desc")
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.catalog.Categories(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Printf("%6d  %s\n", c.ID, c.Name)
			}
			return nil
		},
	}
}
