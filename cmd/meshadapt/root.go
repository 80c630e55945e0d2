/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package meshadapt

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

var cfgFile string

// RootCmd is the base command of the meshadapt CLI.
var RootCmd = &cobra.Command{
	Use:   "meshadapt",
	Short: "Parallel unstructured-mesh adaptation engine",
	Long: `meshadapt drives anisotropic metric-based refinement, coarsening,
and swap of a simplicial mesh toward a target size field.`,
}

// Execute runs the CLI; main.go's sole job is to call this and handle the error.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {})
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.meshadapt.yaml)")
	RootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to this path while the command runs")
}

// defaultConfigPath falls back to a dotfile in the user's home directory
// when no --config flag is given.
func defaultConfigPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return home + string(os.PathSeparator) + ".meshadapt.yaml"
}

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return defaultConfigPath()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "meshadapt: "+format+"\n", args...)
	os.Exit(1)
}
