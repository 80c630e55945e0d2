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
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/notargets/meshadapt/internal/adapt"
	"github.com/notargets/meshadapt/internal/meshmodel"
	"github.com/notargets/meshadapt/internal/options"
)

// AdaptCmd represents the adapt command
var AdaptCmd = &cobra.Command{
	Use:   "adapt",
	Short: "Run the refine/coarsen/swap driver over a box mesh toward a target options file",
	Long: `Builds a triangulated box mesh, loads adapt options from the config file
(--config, else $HOME/.meshadapt.yaml; built-in defaults when no file is
found), and runs the adaptation driver until no pass fires or MaxIterations
is reached, reporting before/after mesh quality.`,
	Run: func(cmd *cobra.Command, args []string) {
		if path, _ := cmd.Flags().GetString("cpuprofile"); path != "" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(path)).Stop()
		}

		opts := loadOptions(cmd)

		nx, _ := cmd.Flags().GetInt("nx")
		ny, _ := cmd.Flags().GetInt("ny")
		mesh := buildBoxMesh2D(nx, ny)
		vm := isotropicMetrics(2, mesh.NEnts(meshmodel.Vert), opts.MinLengthDesired)

		computeStats(mesh).Print("before")

		result, err := adapt.Adapt(mesh, vm, opts, nil)
		if err != nil {
			fatalf("adapt failed: %v", err)
		}

		computeStats(result.Mesh).Print("after")
	},
}

func loadOptions(cmd *cobra.Command) options.AdaptOptions {
	opts := options.Default()
	path := resolveConfigPath()
	if path == "" {
		return opts
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fatalf("reading config %q: %v", path, err)
		}
		return opts
	}
	if err := opts.Parse(data); err != nil {
		fatalf("parsing config %q: %v", path, err)
	}
	return opts
}

func init() {
	RootCmd.AddCommand(AdaptCmd)
	AdaptCmd.Flags().Int("nx", 8, "number of box-mesh cells in x")
	AdaptCmd.Flags().Int("ny", 8, "number of box-mesh cells in y")
}
