package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holiman/uint256"
	"github.com/zeromicro/go-zero/core/logx"

	"indexfund-api/pkg/client"
	"indexfund-api/pkg/confkit"
	"indexfund-api/pkg/host"
	"indexfund-api/pkg/registry"
)

const usage = `usage: fundctl [flags] <command> [args]

commands:
  keygen                         print a fresh signing key and its address
  deploy <interval>              initialise the registry
  register [controller]          register the controller (defaults to the signer)
  update <asset=weight>...       submit one weight batch
  weights                        print the weights view
  assets                         print the asset list
  info                           print registry metadata
`

func main() {
	confkit.LoadDotenvOnce()

	var (
		baseURL    = flag.String("url", envOr("INDEXFUND_BASE_URL", "http://127.0.0.1:8888"), "registry API base URL")
		keyHex     = flag.String("key", os.Getenv("INDEXFUND_PRIVATE_KEY"), "hex encoded secp256k1 signing key")
		registryID = flag.String("registry", os.Getenv("INDEXFUND_REGISTRY_ID"), "registry id signatures are bound to (fetched when empty)")
		deposit    = flag.String("deposit", "", "deposit attached to register (defaults to the advertised amount)")
		timeout    = flag.Duration("timeout", 30*time.Second, "overall request timeout")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	logx.MustSetup(logx.LogConf{})
	logx.DisableStat()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	if args[0] == "keygen" {
		signer, err := host.GenerateSigner()
		if err != nil {
			fatalf("generate key: %v", err)
		}
		printJSON(map[string]string{"private_key": signer.PrivateKeyHex(), "address": string(signer.Identity())})
		return
	}

	opts := []client.Option{client.WithRegistryID(*registryID)}
	var signer host.Signer
	if *keyHex != "" {
		s, err := host.NewPrivateKeySigner(*keyHex)
		if err != nil {
			fatalf("load signing key: %v", err)
		}
		signer = s
		opts = append(opts, client.WithSigner(s))
	}
	c := client.New(*baseURL, opts...)

	if err := run(ctx, c, signer, *deposit, args); err != nil {
		fatalf("%s: %v", args[0], err)
	}
}

func run(ctx context.Context, c *client.Client, signer host.Signer, rawDeposit string, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "deploy":
		interval := registry.DefaultRebalanceInterval
		if len(rest) > 0 {
			v, err := parseInterval(rest[0])
			if err != nil {
				return err
			}
			interval = v
		}
		resp, err := c.Deploy(ctx, interval)
		if err != nil {
			return err
		}
		logx.Infof("deployed registry %s with interval %d", resp.RegistryId, resp.RebalanceInterval)
		printJSON(resp)
	case "register":
		if signer == nil {
			return fmt.Errorf("signing key required (-key or INDEXFUND_PRIVATE_KEY)")
		}
		controller := signer.Identity()
		if len(rest) > 0 {
			controller = registry.Identity(rest[0])
		}
		var amount *uint256.Int
		if rawDeposit != "" {
			v, err := host.ParseDeposit(rawDeposit)
			if err != nil {
				return err
			}
			amount = v
		}
		resp, err := c.RegisterController(ctx, controller, amount)
		if err != nil {
			return err
		}
		logx.Infof("registered controller %s", controller)
		printJSON(resp)
	case "update":
		updates, err := parseUpdates(rest)
		if err != nil {
			return err
		}
		resp, err := c.UpdateWeights(ctx, updates)
		if err != nil {
			return err
		}
		logx.Infof("updated weights: %v", updates)
		printJSON(resp)
	case "weights":
		weights, err := c.Weights(ctx)
		if err != nil {
			return err
		}
		printJSON(weights)
	case "assets":
		assets, err := c.Assets(ctx)
		if err != nil {
			return err
		}
		printJSON(assets)
	case "info":
		info, err := c.Info(ctx)
		if err != nil {
			return err
		}
		printJSON(info)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("encode output: %v", err)
	}
}

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}
