// Copyright 2025 The onnxgo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// ortinfo inspects a native engine library: its version, build
// configuration and available execution providers.
package main

import (
	"fmt"
	"os"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/ffi"
	"github.com/onnxgo/ort/session"
	"github.com/spf13/cobra"
)

var libPath string

func loadEngine() (*ffi.Runtime, error) {
	if libPath != "" {
		rt, err := ffi.Load(libPath)
		if err != nil {
			return nil, err
		}
		api.Set(rt)
		return rt, nil
	}
	rt, err := ffi.LoadDefault()
	if err != nil {
		return nil, err
	}
	api.Set(rt)
	return rt, nil
}

func main() {
	root := &cobra.Command{
		Use:           "ortinfo",
		Short:         "Inspect a native inference engine library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&libPath, "lib", "",
		"path to the engine shared library (default: $"+ffi.PathEnvVar+" or the system library)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadEngine()
			if err != nil {
				return err
			}
			fmt.Println(rt.Version())
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "build-info",
		Short: "Print the engine build configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadEngine()
			if err != nil {
				return err
			}
			fmt.Println(rt.BuildInfo())
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "providers",
		Short: "List the execution providers in this engine build",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadEngine(); err != nil {
				return err
			}
			env, err := session.Default()
			if err != nil {
				return err
			}
			providers, err := env.AvailableProviders()
			if err != nil {
				return err
			}
			for _, p := range providers {
				fmt.Println(p)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "model <path>",
		Short: "Print a model's input and output ports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadEngine(); err != nil {
				return err
			}
			s, err := session.NewBuilder().CommitFromMappedFile(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			for i := range s.InputNames() {
				info, err := s.InputInfo(i)
				if err != nil {
					return err
				}
				fmt.Printf("input  %-24s %-10s %v\n", info.Name, info.Type, info.Shape)
			}
			for i := range s.OutputNames() {
				info, err := s.OutputInfo(i)
				if err != nil {
					return err
				}
				fmt.Printf("output %-24s %-10s %v\n", info.Name, info.Type, info.Shape)
			}
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
