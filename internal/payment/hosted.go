package payment

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HostedGateway serves the gateway's hosted checkout page on a loopback
// address and resolves when the page reports back. This is the terminal
// client's equivalent of injecting the checkout script into a browser page.
type HostedGateway struct {
	// Addr is the loopback listen address; port 0 picks a free port.
	Addr string
	// OpenBrowser is invoked with the checkout URL once the page is
	// being served. Best effort: a nil or failing opener just means the
	// customer pastes the URL by hand.
	OpenBrowser func(url string) error

	log *slog.Logger
}

func NewHostedGateway(addr string, log *slog.Logger) *HostedGateway {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	return &HostedGateway{Addr: addr, log: log}
}

var checkoutPage = template.Must(template.New("checkout").Parse(`<!doctype html>
<html>
<head><title>Mekaro Secure Checkout</title></head>
<body>
<script src="https://checkout.razorpay.com/v1/checkout.js"
        onerror="fetch('/error', {method: 'POST'})"></script>
<script>
window.onload = function () {
  if (typeof Razorpay === "undefined") { return; }
  var rzp = new Razorpay({
    key: {{.Session.Key}},
    amount: {{.Session.Amount}},
    currency: {{.Session.Currency}},
    order_id: {{.Session.OrderID}},
    name: "Mekaro E-Commerce",
    prefill: {name: {{.Prefill.Name}}, email: {{.Prefill.Email}}, contact: {{.Prefill.Contact}}},
    theme: {color: "#06b6d4"},
    handler: function (response) {
      fetch('/callback', {
        method: 'POST',
        headers: {'Content-Type': 'application/x-www-form-urlencoded'},
        body: new URLSearchParams(response).toString()
      }).then(function () { document.body.innerText = "Payment received. You can close this tab."; });
    },
    modal: {
      ondismiss: function () { fetch('/dismiss', {method: 'POST'}); }
    }
  });
  rzp.open();
};
</script>
</body>
</html>`))

type resolution struct {
	result Result
	err    error
}

func (g *HostedGateway) Collect(ctx context.Context, session Session, prefill Prefill) (Result, error) {
	ln, err := net.Listen("tcp", g.Addr)
	if err != nil {
		return Result{}, fmt.Errorf("failed to start checkout listener: %w", err)
	}

	done := make(chan resolution, 1)
	resolve := func(r resolution) {
		select {
		case done <- r:
		default: // already resolved
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		data := struct {
			Session Session
			Prefill Prefill
		}{Session: session, Prefill: prefill}
		if err := checkoutPage.Execute(w, data); err != nil {
			g.log.Warn("failed to render checkout page", "error", err)
		}
	})
	r.Post("/callback", func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		resolve(resolution{result: Result{
			Outcome: OutcomePaid,
			Confirmation: Confirmation{
				OrderID:   req.PostFormValue("razorpay_order_id"),
				PaymentID: req.PostFormValue("razorpay_payment_id"),
				Signature: req.PostFormValue("razorpay_signature"),
			},
		}})
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/dismiss", func(w http.ResponseWriter, req *http.Request) {
		resolve(resolution{result: Result{Outcome: OutcomeDismissed}})
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/error", func(w http.ResponseWriter, req *http.Request) {
		resolve(resolution{err: fmt.Errorf("gateway script failed to load")})
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{Handler: r}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			resolve(resolution{err: fmt.Errorf("checkout server failed: %w", err)})
		}
	}()
	defer srv.Close()

	url := fmt.Sprintf("http://%s/", ln.Addr().String())
	g.log.Info("awaiting payment", "url", url, "order_id", session.OrderID)
	if g.OpenBrowser != nil {
		if err := g.OpenBrowser(url); err != nil {
			g.log.Warn("failed to open browser", "error", err)
		}
	}

	select {
	case res := <-done:
		return res.result, res.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
