// Package fixtures provides builders for test data
package fixtures

import (
	"crosstalk/application/commands"
)

// BuildCommandBuilder assembles a valid BuildNetworkCommand around a
// small two-cluster dataset: cluster A carries tf1 activity and rec1
// expression, cluster B expresses lig1, so a default-threshold build
// links A <- B through tf1 -> rec1 -> lig1.
type BuildCommandBuilder struct {
	cmd commands.BuildNetworkCommand
}

// NewBuildCommandBuilder seeds the builder with the two-cluster dataset
func NewBuildCommandBuilder() *BuildCommandBuilder {
	return &BuildCommandBuilder{
		cmd: commands.BuildNetworkCommand{
			UserID: "test-user-123",
			Name:   "test-network",
			Genes:  []string{"rec1", "lig1"},
			Cells:  []string{"c1", "c2", "c3", "c4", "c5", "c6"},
			Expression: [][]float64{
				{5, 6, 7, 0, 1, 2},
				{0, 0, 0, 2, 4, 6},
			},
			TFs: []string{"tf1"},
			Activities: [][]float64{
				{5, 6, 7, 0, 1, 2},
			},
			Clusters:     []string{"A", "A", "A", "B", "B", "B"},
			ClusterOrder: []string{"A", "B"},
			ReceptorLigands: map[string][]string{
				"rec1": {"lig1"},
			},
		},
	}
}

func (b *BuildCommandBuilder) WithUserID(userID string) *BuildCommandBuilder {
	b.cmd.UserID = userID
	return b
}

func (b *BuildCommandBuilder) WithName(name string) *BuildCommandBuilder {
	b.cmd.Name = name
	return b
}

func (b *BuildCommandBuilder) WithColors(colors map[string]string) *BuildCommandBuilder {
	b.cmd.Colors = colors
	return b
}

func (b *BuildCommandBuilder) WithReceptorLigands(db map[string][]string) *BuildCommandBuilder {
	b.cmd.ReceptorLigands = db
	return b
}

// WithSingleGene shrinks the expression matrix below the validator's
// minimum so the dataset is rejected
func (b *BuildCommandBuilder) WithSingleGene() *BuildCommandBuilder {
	b.cmd.Genes = []string{"rec1"}
	b.cmd.Expression = [][]float64{{5, 6, 7, 0, 1, 2}}
	return b
}

// Build returns the assembled command
func (b *BuildCommandBuilder) Build() commands.BuildNetworkCommand {
	return b.cmd
}
