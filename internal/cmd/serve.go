package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kyriemtx/qrsrv/internal/app"
	"github.com/kyriemtx/qrsrv/internal/crypto"
	"github.com/kyriemtx/qrsrv/internal/netutil"
	"github.com/kyriemtx/qrsrv/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the QR code HTTP server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer log.Sync()

		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = cfg.Listen
		}
		if !netutil.TCPAddrAvailable(listen) {
			return fmt.Errorf("listen address %s is not available", listen)
		}

		gen, err := newGenerator(cfg, log)
		if err != nil {
			return err
		}
		srv := web.NewServer(gen, log, web.Options{
			WriteTimeout:   cfg.HTTP.WriteTimeout,
			MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		})

		httpSrv := &http.Server{
			Addr:              listen,
			Handler:           srv.Router(),
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			ErrorLog:          zap.NewStdLog(log.Named("http")),
		}

		scheme := "http"
		if cfg.TLS.Enabled() {
			scheme = "https"
		}
		if cfg.TLS.SelfSigned && cfg.TLS.CertFile == "" {
			cert, fp, err := crypto.GenerateSelfSigned(netutil.LANIPs(), 365)
			if err != nil {
				return fmt.Errorf("self-signed certificate: %w", err)
			}
			httpSrv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
			fmt.Println("Self-signed certificate SHA-256:", fp)
		}

		url := fmt.Sprintf("%s://%s/index", scheme, net.JoinHostPort(netutil.BrowseHost(listen), netutil.Port(listen)))
		fmt.Println("Listening:", listen)
		fmt.Println("Open:", app.Color(url, "36"))
		if app.IsTerminal() {
			if s, err := gen.Terminal(url); err == nil {
				fmt.Print(s)
			}
		}

		errCh := make(chan error, 1)
		go func() {
			switch {
			case cfg.TLS.CertFile != "":
				errCh <- httpSrv.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			case httpSrv.TLSConfig != nil:
				errCh <- httpSrv.ListenAndServeTLS("", "")
			default:
				errCh <- httpSrv.ListenAndServe()
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default from config: :8080)")
}
