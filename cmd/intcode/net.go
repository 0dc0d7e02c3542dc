// This file is part of intcode - https://github.com/db47h/intcode
//
// Copyright 2019 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/db47h/intcode/network"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var netCmd = &cobra.Command{
	Use:   "net [flags] [program]",
	Short: "Run a network of machines.",
	Long: `Boot a network of machines running the same program, each given its
address as first input, and route the packets they send. Report the Y value
sent twice in a row by the NAT to address 0, or with --stop-at-nat, the Y value
of the first packet sent to the NAT.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := loadProgram(args)
		if err != nil {
			return err
		}
		opts := []network.Option{
			network.Size(cfg.Network.Size),
			network.NATAddress(cfg.Network.NATAddress),
			network.IdleTimeout(cfg.Network.IdleTimeout),
			network.Logger(log.StandardLogger()),
		}
		if cfg.Network.StopAtNAT {
			opts = append(opts, network.StopAtNAT())
		}
		addr, _ := cmd.Flags().GetString("metrics")
		if addr != "" {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			opts = append(opts, network.Metrics(reg))
			srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.WithError(err).Error("metrics server failed")
				}
			}()
			defer srv.Close()
			log.WithField("addr", addr).Info("serving metrics")
		}
		n, err := network.New(img, opts...)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if d, _ := cmd.Flags().GetDuration("timeout"); d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		y, err := n.Run(ctx)
		if err != nil {
			return errors.Wrap(err, "network")
		}
		fmt.Fprintln(cmd.OutOrStdout(), y)
		return nil
	},
}

func init() {
	netCmd.Flags().Int("size", 50, "number of machines")
	netCmd.Flags().Int("nat", 255, "NAT address, negative to disable")
	netCmd.Flags().Duration("idle", 50*time.Millisecond, "idle time before the NAT wakes up the network")
	netCmd.Flags().Bool("stop-at-nat", false, "stop at the first packet sent to the NAT")
	netCmd.Flags().Duration("timeout", 0, "give up after this long, 0 for no limit")
	netCmd.Flags().String("metrics", "", "serve prometheus metrics on `addr`")
	rootCmd.AddCommand(netCmd)
}
