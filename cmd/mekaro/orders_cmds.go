package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mekaroindia/mekaro/internal/auth"
)

func (a *app) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "View your orders",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard.Require(); err != nil {
				if errors.Is(err, auth.ErrNotAuthenticated) {
					return errors.New("please log in first (mekaro login)")
				}
				return err
			}
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := a.api.MyOrders(cmd.Context())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Println("No orders yet.")
				return nil
			}
			for _, o := range orders {
				flag := ""
				if o.IsPriority {
					flag = "  [priority]"
				}
				fmt.Printf("#%-6d %-10s %-8s ₹%s%s\n",
					o.ID, o.Status, o.PaymentMethod, o.TotalAmount.StringFixed(2), flag)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			order, err := a.api.Order(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Order #%d — %s — ₹%s (%s)\n",
				order.ID, order.Status, order.TotalAmount.StringFixed(2), order.PaymentMethod)
			for _, item := range order.Items {
				fmt.Printf("   %-40s x%-3d ₹%s\n", item.Title, item.Quantity, item.Price.StringFixed(2))
			}
			addr := order.ShippingAddress
			fmt.Printf("Ship to: %s, %s, %s %s (%s)\n",
				addr.AddressLine1, addr.City, addr.State, addr.Pincode, addr.Phone)
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
