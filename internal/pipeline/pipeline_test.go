package pipeline_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BayFX/omtsf-sub000/internal/logging"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
	"github.com/BayFX/omtsf-sub000/internal/pipeline"
)

func TestMain(m *testing.M) {
	_ = logging.Initialize(logging.DebugConfig())
	os.Exit(m.Run())
}

func writeFixtureFile(t *testing.T, nodes []omtsf.Node, edges []omtsf.Edge) string {
	t.Helper()
	d, err := omtsf.NewCalendarDate("2026-02-20")
	require.NoError(t, err)
	salt, err := omtsf.NewFileSalt("cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc")
	require.NoError(t, err)
	file := omtsf.File{
		OmtsfVersion: "1.0.0",
		SnapshotDate: d,
		FileSalt:     salt,
		Nodes:        nodes,
		Edges:        edges,
	}
	data, err := json.Marshal(file)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "fixture.omtsf.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func orgNode(id string) omtsf.Node {
	name := "Acme " + id
	return omtsf.Node{Id: omtsf.NodeId(id), NodeType: omtsf.KnownNodeType(omtsf.NodeTypeOrganization), Name: &name}
}

func suppliesEdge(id, src, tgt string) omtsf.Edge {
	return omtsf.Edge{
		Id: omtsf.EdgeId(id), EdgeType: omtsf.KnownEdgeType(omtsf.EdgeTypeSupplies),
		Source: omtsf.NodeId(src), Target: omtsf.NodeId(tgt),
	}
}

func TestLoadFile_RoundTripsFixture(t *testing.T) {
	path := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	file, err := pipeline.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, file.Nodes, 1)
	require.Equal(t, omtsf.NodeId("a"), file.Nodes[0].Id)
}

func TestLoadFile_MissingFileReturnsError(t *testing.T) {
	_, err := pipeline.LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadFile_InvalidJSONReturnsParseFailedError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := pipeline.LoadFile(path)
	require.Error(t, err)
}

func TestSaveFile_WritesReadableFile(t *testing.T) {
	d, err := omtsf.NewCalendarDate("2026-02-20")
	require.NoError(t, err)
	salt, err := omtsf.NewFileSalt("cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc")
	require.NoError(t, err)
	file := &omtsf.File{OmtsfVersion: "1.0.0", SnapshotDate: d, FileSalt: salt}
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, pipeline.SaveFile(file, path))

	got, err := pipeline.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, file.OmtsfVersion, got.OmtsfVersion)
}

func TestValidate_SingleOrgFileHasNoErrorsAtL1L2(t *testing.T) {
	path := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	result, err := pipeline.Validate(path, pipeline.ValidateOptions{RunL2: true})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.False(t, result.HasErrors())
}

func TestValidateBatch_RunsAllPathsConcurrently(t *testing.T) {
	p1 := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	p2 := writeFixtureFile(t, []omtsf.Node{orgNode("b")}, nil)
	results, err := pipeline.ValidateBatch(context.Background(), []string{p1, p2}, pipeline.ValidateOptions{RunL2: true})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
	}
}

func TestValidateBatch_PropagatesMissingFileError(t *testing.T) {
	_, err := pipeline.ValidateBatch(context.Background(), []string{filepath.Join(t.TempDir(), "missing.json")}, pipeline.ValidateOptions{})
	require.Error(t, err)
}

func TestDiff_TwoIdenticalFilesAreEmpty(t *testing.T) {
	path := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	result, err := pipeline.Diff(path, path, pipeline.DiffOptions{})
	require.NoError(t, err)
	require.True(t, result.IsEmpty())
}

func TestDiff_NodeAddedIsDetected(t *testing.T) {
	pathA := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	pathB := writeFixtureFile(t, []omtsf.Node{orgNode("a"), orgNode("b")}, nil)
	result, err := pipeline.Diff(pathA, pathB, pipeline.DiffOptions{})
	require.NoError(t, err)
	require.False(t, result.IsEmpty())
}

func TestMerge_TwoFilesProducesUnion(t *testing.T) {
	pathA := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	pathB := writeFixtureFile(t, []omtsf.Node{orgNode("b")}, nil)
	out, err := pipeline.Merge([]string{pathA, pathB}, pipeline.MergeOptions{GroupSizeLimit: 50, SameAsThreshold: "definite"})
	require.NoError(t, err)
	require.Len(t, out.File.Nodes, 2)
}

func TestMerge_EmptyInputReturnsError(t *testing.T) {
	_, err := pipeline.Merge(nil, pipeline.MergeOptions{})
	require.Error(t, err)
}

func TestRedact_PublicScopeOmitsNothingForOrgOnly(t *testing.T) {
	path := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	out, err := pipeline.Redact(path, "public", nil)
	require.NoError(t, err)
	require.Len(t, out.Nodes, 1)
}

func TestRedact_UnknownScopeReturnsError(t *testing.T) {
	path := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	_, err := pipeline.Redact(path, "bogus", nil)
	require.Error(t, err)
}

func TestQueryInduced_SubsetOfNodes(t *testing.T) {
	path := writeFixtureFile(t, []omtsf.Node{orgNode("a"), orgNode("b")}, []omtsf.Edge{suppliesEdge("e1", "a", "b")})
	out, err := pipeline.QueryInduced(context.Background(), path, []string{"a", "b"}, nil)
	require.NoError(t, err)
	require.Len(t, out.Nodes, 2)
	require.Len(t, out.Edges, 1)
}

func TestQueryEgo_Radius0ReturnsCenterOnly(t *testing.T) {
	path := writeFixtureFile(t, []omtsf.Node{orgNode("a"), orgNode("b")}, []omtsf.Edge{suppliesEdge("e1", "a", "b")})
	out, err := pipeline.QueryEgo(context.Background(), path, "a", 0, "out", nil)
	require.NoError(t, err)
	require.Len(t, out.Nodes, 1)
}

func TestQueryEgo_UnknownDirectionReturnsError(t *testing.T) {
	path := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	_, err := pipeline.QueryEgo(context.Background(), path, "a", 1, "sideways", nil)
	require.Error(t, err)
}

func TestQuerySelect_FiltersByNodeType(t *testing.T) {
	path := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	out, err := pipeline.QuerySelect(context.Background(), path, pipeline.QuerySelectOptions{NodeTypes: []string{"organization"}}, nil)
	require.NoError(t, err)
	require.Len(t, out.Nodes, 1)
}

func TestGraphCache_HitAfterFirstMiss(t *testing.T) {
	path := writeFixtureFile(t, []omtsf.Node{orgNode("a")}, nil)
	cachePath := filepath.Join(t.TempDir(), "cache.db")
	cache, err := pipeline.OpenGraphCache(cachePath)
	require.NoError(t, err)
	defer cache.Close()

	g1, err := pipeline.LoadGraphCached(context.Background(), path, cache)
	require.NoError(t, err)
	require.NotNil(t, g1)

	g2, err := pipeline.LoadGraphCached(context.Background(), path, cache)
	require.NoError(t, err)
	require.NotNil(t, g2)
}
