package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
)

var (
	flagSecret  string
	flagKey     string
	flagParams  []string
	flagUnsafe  bool
	flagBaseURL string
)

var rootCmd = &cobra.Command{
	Use:   "cyberpunkpath-sign",
	Short: "Build a signed or unsafe cyberpunkpath URL for a source key",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&flagSecret, "secret", os.Getenv("APP_APPLICATION__HMAC_SECRET"), "HMAC/Argon2id signing secret (falls back to APP_APPLICATION__HMAC_SECRET)")
	rootCmd.Flags().StringVar(&flagKey, "key", "", "source audio key or URL")
	rootCmd.Flags().StringArrayVar(&flagParams, "param", nil, "transform parameter as key=value, repeatable")
	rootCmd.Flags().BoolVar(&flagUnsafe, "unsafe", false, "emit an unsigned /unsafe/ path instead of signing")
	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "prepend this base URL to the printed path")
	_ = rootCmd.MarkFlagRequired("key")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	query := url.Values{}
	for _, kv := range flagParams {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("malformed --param %q, want key=value", kv)
		}
		query.Set(parts[0], parts[1])
	}

	params, err := cyberpunkpath.FromPath(flagKey, query)
	if err != nil {
		return fmt.Errorf("build params: %w", err)
	}

	var path string
	if flagUnsafe {
		path = cyberpunkpath.ToUnsafeString(params)
	} else {
		if flagSecret == "" {
			return fmt.Errorf("--secret is required to sign a path (or set APP_APPLICATION__HMAC_SECRET)")
		}
		signer := cyberpunkpath.NewSigner(flagSecret)
		path, err = cyberpunkpath.ToSignedString(params, signer)
		if err != nil {
			return fmt.Errorf("sign path: %w", err)
		}
	}

	fmt.Println(strings.TrimSuffix(flagBaseURL, "/") + "/" + path)
	return nil
}
