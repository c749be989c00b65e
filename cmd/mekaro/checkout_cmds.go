package main

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mekaroindia/mekaro/internal/auth"
	"github.com/mekaroindia/mekaro/internal/backend"
	"github.com/mekaroindia/mekaro/internal/checkout"
	"github.com/mekaroindia/mekaro/internal/payment"
)

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

func (a *app) checkoutCmd() *cobra.Command {
	var (
		form     backend.ShippingAddress
		pay      string
		priority bool
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard.Require(); err != nil {
				if errors.Is(err, auth.ErrNotAuthenticated) {
					return errors.New("please log in first (mekaro login)")
				}
				return err
			}

			var method checkout.PaymentMethod
			switch strings.ToLower(pay) {
			case "cod":
				method = checkout.PaymentCOD
			case "online":
				method = checkout.PaymentOnline
			default:
				return fmt.Errorf("unknown payment method %q (use cod or online)", pay)
			}

			gw := payment.NewHostedGateway(a.cfg.GatewayListenAddr, a.log)
			gw.OpenBrowser = openBrowser

			orch := checkout.New(a.api, a.cart, gw, func() {
				fmt.Println("Order placed. Thank you for shopping with Mekaro!")
			}, a.log)

			prefill, err := orch.Begin(cmd.Context())
			if err != nil {
				fmt.Println("Could not load your saved address; using flags only.")
			}
			merged := mergeForm(prefill, form)

			if eligible, effective := orch.PriorityOption(merged, priority); priority && !effective {
				if !eligible {
					fmt.Println("Priority delivery is not available for this pincode; placing a standard order.")
				}
			}

			err = orch.PlaceOrder(cmd.Context(), merged, method, priority)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, checkout.ErrPaymentCancelled):
				fmt.Println("Payment cancelled. Your cart is unchanged.")
				return nil
			default:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&form.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&form.AddressLine1, "address", "", "address line 1")
	cmd.Flags().StringVar(&form.City, "city", "", "city")
	cmd.Flags().StringVar(&form.State, "state", "", "state")
	cmd.Flags().StringVar(&form.Pincode, "pincode", "", "postal code")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&pay, "pay", "cod", "payment method: cod or online")
	cmd.Flags().BoolVar(&priority, "priority", false, "request one-day priority delivery")
	return cmd
}

// mergeForm lets flags override the profile prefill field by field.
func mergeForm(prefill, flags backend.ShippingAddress) backend.ShippingAddress {
	pick := func(flag, pre string) string {
		if strings.TrimSpace(flag) != "" {
			return flag
		}
		return pre
	}
	return backend.ShippingAddress{
		FullName:     pick(flags.FullName, prefill.FullName),
		AddressLine1: pick(flags.AddressLine1, prefill.AddressLine1),
		City:         pick(flags.City, prefill.City),
		State:        pick(flags.State, prefill.State),
		Pincode:      pick(flags.Pincode, prefill.Pincode),
		Phone:        pick(flags.Phone, prefill.Phone),
	}
}
