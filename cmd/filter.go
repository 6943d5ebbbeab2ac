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
package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/lesfilter/InputParameters"
	"github.com/notargets/lesfilter/config"
	"github.com/notargets/lesfilter/field"
	"github.com/notargets/lesfilter/filter"
	"github.com/notargets/lesfilter/mesh"
	"github.com/notargets/lesfilter/types"
	"github.com/notargets/lesfilter/utils"
)

type FilterRun struct {
	CaseFile, MeshFile string
	DictFile           string // Filter dictionary file, overrides the case Filter
	Graph              bool
	Delay              time.Duration
	Profile            string // cpu, mem or empty
	Perf               bool
	Verbose            bool
}

// FieldResult summarises the residual of one case field
type FieldResult struct {
	Name     string
	Kind     types.Kind
	Stats    []field.Stats
	Norm     float64
	Residual [][]float64 // Cell values by component
}

// FilterCmd represents the filter command
var FilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Apply the LES filter to the fields of a case",
	Long: `
Builds or reads the case mesh, constructs the filter named in the case Filter
dictionary, initialises every case field and prints statistics of its residual.

lesfilter filter -I case.yaml [-F mesh.su2] [--dict filter.yaml]`,
	Run: func(cmd *cobra.Command, args []string) {
		fr := &FilterRun{}
		fr.CaseFile, _ = cmd.Flags().GetString("inputConditionsFile")
		fr.MeshFile, _ = cmd.Flags().GetString("meshFile")
		fr.DictFile, _ = cmd.Flags().GetString("dict")
		fr.Graph, _ = cmd.Flags().GetBool("graph")
		dr, _ := cmd.Flags().GetInt("delay")
		fr.Delay = time.Duration(dr) * time.Millisecond
		fr.Profile, _ = cmd.Flags().GetString("profile")
		fr.Perf, _ = cmd.Flags().GetBool("perf")
		fr.Verbose = viper.GetBool("verbose")
		cp := processCase(fr.CaseFile)
		if _, err := RunFilter(fr, cp); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(FilterCmd)
	FilterCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML case file with the mesh, Filter dictionary and fields")
	FilterCmd.Flags().StringP("meshFile", "F", "", "SU2 mesh file, overrides the case mesh")
	FilterCmd.Flags().String("dict", "", "filter dictionary file (yaml, json or toml), overrides the case Filter")
	FilterCmd.Flags().BoolP("graph", "g", false, "plot each field and its residual against x")
	FilterCmd.Flags().IntP("delay", "d", 0, "milliseconds to hold each plot")
	FilterCmd.Flags().String("profile", "", "write a pprof profile to the current directory: cpu or mem")
	FilterCmd.Flags().Bool("perf", false, "count CPU instructions spent filtering each field (Linux)")
}

func RunFilter(fr *FilterRun, cp *InputParameters.CaseParameters) (results []FieldResult, err error) {
	switch fr.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		err = fmt.Errorf("unknown profile %q, valid profiles are cpu and mem", fr.Profile)
		return
	}
	var (
		m    *mesh.Mesh
		lf   filter.LESFilter
		dict *config.Dict
	)
	if fr.Verbose {
		cp.Print()
	}
	if m, err = cp.Mesh.BuildMesh(fr.MeshFile); err != nil {
		return
	}
	if fr.Verbose {
		m.Statistics().Print()
	}
	if dict, err = filterDict(cp, fr.DictFile); err != nil {
		return
	}
	if fr.Verbose {
		fmt.Printf("Filter dictionary %s: %v\n", dict.Name(), dict.Keys())
	}
	if lf, err = filter.NewRegistry().NewFromDict(m, dict); err != nil {
		return
	}
	if plr, ok := lf.(*filter.PolyLaplaceResidual); ok {
		fmt.Printf("%s: d1 = %g, d2 = %g\n", lf.TypeName(), plr.Coeffs().D1, plr.Coeffs().D2)
	}
	for _, fp := range cp.Fields {
		var (
			kind types.Kind
			res  FieldResult
		)
		if kind, err = types.ParseKind(fp.Kind); err != nil {
			err = fmt.Errorf("field %s: %w", fp.Name, err)
			return
		}
		switch kind {
		case types.ScalarKind:
			res, err = runField[types.Scalar](fr, lf, m, fp)
		case types.VectorKind:
			res, err = runField[types.Vector](fr, lf, m, fp)
		case types.SymmTensorKind:
			res, err = runField[types.SymmTensor](fr, lf, m, fp)
		case types.TensorKind:
			res, err = runField[types.Tensor](fr, lf, m, fp)
		}
		if err != nil {
			err = fmt.Errorf("field %s: %w", fp.Name, err)
			return
		}
		for _, st := range res.Stats {
			st.Print()
		}
		fmt.Printf("%-24s norm = %12.5e\n", res.Name, res.Norm)
		if fr.Verbose {
			fmt.Println(utils.GetMemUsage())
		}
		results = append(results, res)
	}
	return
}

func valueOf[T types.Value[T]](vals []float64) (v T) {
	for i, val := range vals {
		v = v.SetCmpt(i, val)
	}
	return
}

func runField[T types.Value[T]](fr *FilterRun, lf filter.LESFilter, m *mesh.Mesh,
	fp InputParameters.FieldParameters) (res FieldResult, err error) {
	var (
		kind = types.KindOf[T]()
		n    = kind.NCmpts()
		dims field.Dimensions
		eval func(x r3.Vec) []float64
		r    *field.VolField[T]
	)
	if dims, err = field.ParseDimensions(fp.Dimensions); err != nil {
		return
	}
	if eval, err = fp.Profile.Evaluator(n); err != nil {
		return
	}
	vf := field.NewVolField[T](fp.Name, m, dims).SetFromCentres(func(x r3.Vec) T {
		return valueOf[T](eval(x))
	})
	patchNames := make([]string, 0, len(fp.BCs))
	for name := range fp.BCs {
		patchNames = append(patchNames, name)
	}
	sort.Strings(patchNames)
	for _, name := range patchNames {
		var (
			bc  types.BCType
			ref []float64
		)
		if bc, ref, err = fp.BCs[name].Parse(n); err != nil {
			err = fmt.Errorf("patch %s: %w", name, err)
			return
		}
		if err = vf.SetBC(name, bc, valueOf[T](ref)); err != nil {
			return
		}
	}
	var input []float64
	if fr.Graph {
		input = vf.Cmpt(0)
	}
	apply := func() (err error) {
		r, err = filter.Filter(lf, field.NewTmp(vf))
		return
	}
	if fr.Perf {
		err = withPerf(fp.Name, apply)
	} else {
		err = apply()
	}
	if err != nil {
		return
	}
	res = FieldResult{
		Name:     r.Name,
		Kind:     kind,
		Stats:    r.Stats(),
		Norm:     r.Norm(),
		Residual: make([][]float64, n),
	}
	for i := range res.Residual {
		res.Residual[i] = r.Cmpt(i)
		if utils.IsNan(res.Residual[i]) {
			err = fmt.Errorf("residual component %s is NaN", kind.CmptNames()[i])
			return
		}
	}
	if fr.Graph {
		plotResidual(m, fp.Name, input, res.Residual[0], fr.Delay)
	}
	return
}
