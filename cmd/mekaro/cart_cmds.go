package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mekaroindia/mekaro/internal/backend"
	"github.com/mekaroindia/mekaro/internal/cart"
)

func productForCart(p *backend.Product) cart.Product {
	image := p.Image
	if image == "" && len(p.Images) > 0 {
		image = p.Images[0].Image
	}
	return cart.Product{
		ID:         p.ID,
		Title:      p.Title,
		UnitPrice:  p.Price,
		Image:      image,
		CategoryID: p.Category,
		Stock:      p.Stock,
	}
}

func (a *app) fetchCartProduct(ctx context.Context, arg string) (cart.Product, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return cart.Product{}, fmt.Errorf("invalid product id %q", arg)
	}
	p, err := a.api.Product(ctx, id)
	if err != nil {
		return cart.Product{}, err
	}
	return productForCart(p), nil
}

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}

	var addQty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.fetchCartProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.cart.Add(p, addQty); err != nil {
				return err
			}
			fmt.Printf("Added %s x%d\n", p.Title, addQty)
			return nil
		},
	}
	add.Flags().IntVar(&addQty, "qty", 1, "quantity to add")

	var buyQty int
	buyNow := &cobra.Command{
		Use:   "buy-now <product-id>",
		Short: "Replace the cart with a single product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.fetchCartProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.cart.ReplaceWithSingle(p, buyQty); err != nil {
				return err
			}
			fmt.Printf("Cart replaced with %s x%d\n", p.Title, buyQty)
			return nil
		},
	}
	buyNow.Flags().IntVar(&buyQty, "qty", 1, "quantity")

	var newQty int
	update := &cobra.Command{
		Use:   "update <product-id>",
		Short: "Set the quantity of a cart line item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			return a.cart.UpdateQuantity(id, newQty)
		},
	}
	update.Flags().IntVar(&newQty, "qty", 1, "new quantity")
	_ = update.MarkFlagRequired("qty")

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			return a.cart.Remove(id)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			items := a.cart.Items()
			if len(items) == 0 {
				fmt.Println("Your cart is empty.")
				return nil
			}
			for _, li := range items {
				fmt.Printf("%6d  %-40s  x%-3d  ₹%s\n", li.ProductID, li.Title, li.Quantity, li.Subtotal().StringFixed(2))
			}
			fmt.Printf("Total: ₹%s (%d items)\n", a.cart.TotalPrice().StringFixed(2), a.cart.TotalCount())
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cart.Clear()
		},
	}

	cmd.AddCommand(add, buyNow, update, remove, show, clear)
	return cmd
}
