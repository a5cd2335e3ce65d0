package ethogram_test

import (
	"context"
	"testing"

	"github.com/rhizome-labs/ethogram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *ethogram.Registry {
	reg := ethogram.NewRegistry()
	ethogram.RegisterBuiltins(reg)

	reg.Register("AlwaysSuccess", ethogram.ActionNodeType, nil, 0, 0, func(cfg ethogram.NodeConfig, _ []ethogram.Node) (ethogram.Node, error) {
		return ethogram.NewActionFunc(cfg.Name, func(_ context.Context) (ethogram.NodeStatus, error) {
			return ethogram.Success, nil
		}), nil
	})
	reg.Register("AlwaysFailure", ethogram.ActionNodeType, nil, 0, 0, func(cfg ethogram.NodeConfig, _ []ethogram.Node) (ethogram.Node, error) {
		return ethogram.NewActionFunc(cfg.Name, func(_ context.Context) (ethogram.NodeStatus, error) {
			return ethogram.Failure, nil
		}), nil
	})
	reg.Register("SetKey", ethogram.ActionNodeType, ethogram.PortsList{
		"value": ethogram.InputPort("value", "value to write"),
		"out":   ethogram.OutputPort("out", "where to write it"),
	}, 0, 0, func(cfg ethogram.NodeConfig, _ []ethogram.Node) (ethogram.Node, error) {
		return ethogram.NewActionFunc(cfg.Name, func(_ context.Context) (ethogram.NodeStatus, error) {
			v, err := ethogram.GetInput[string](cfg, "value")
			if err != nil {
				return ethogram.Failure, err
			}
			if err := ethogram.SetOutput(cfg, "out", v); err != nil {
				return ethogram.Failure, err
			}
			return ethogram.Success, nil
		}), nil
	})
	return reg
}

func TestParseDocument_SimpleSequence(t *testing.T) {
	xmlDoc := []byte(`
<root main_tree_to_execute="Main">
  <BehaviorTree ID="Main">
    <Sequence>
      <AlwaysSuccess/>
      <AlwaysSuccess/>
    </Sequence>
  </BehaviorTree>
</root>`)

	doc, err := ethogram.ParseDocument(xmlDoc, testRegistry())
	require.NoError(t, err)

	bb := ethogram.NewBlackboard()
	tree, err := doc.BuildMain(bb)
	require.NoError(t, err)

	status, err := tree.TickOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ethogram.Success, status)
}

func TestParseDocument_UnknownNodeType(t *testing.T) {
	xmlDoc := []byte(`
<root main_tree_to_execute="Main">
  <BehaviorTree ID="Main">
    <Mystery/>
  </BehaviorTree>
</root>`)

	doc, err := ethogram.ParseDocument(xmlDoc, testRegistry())
	require.NoError(t, err)

	_, err = doc.BuildMain(ethogram.NewBlackboard())
	require.ErrorIs(t, err, ethogram.ErrUnknownNodeType)
}

func TestParseDocument_MissingSubTree(t *testing.T) {
	xmlDoc := []byte(`
<root main_tree_to_execute="Main">
  <BehaviorTree ID="Main">
    <SubTree ID="DoesNotExist"/>
  </BehaviorTree>
</root>`)

	doc, err := ethogram.ParseDocument(xmlDoc, testRegistry())
	require.NoError(t, err)

	_, err = doc.BuildMain(ethogram.NewBlackboard())
	require.ErrorIs(t, err, ethogram.ErrMissingSubTree)
}

func TestParseDocument_CyclicSubTree(t *testing.T) {
	xmlDoc := []byte(`
<root main_tree_to_execute="A">
  <BehaviorTree ID="A">
    <SubTree ID="B"/>
  </BehaviorTree>
  <BehaviorTree ID="B">
    <SubTree ID="A"/>
  </BehaviorTree>
</root>`)

	doc, err := ethogram.ParseDocument(xmlDoc, testRegistry())
	require.NoError(t, err)

	_, err = doc.BuildMain(ethogram.NewBlackboard())
	require.ErrorIs(t, err, ethogram.ErrCyclicSubTree)
}

func TestParseDocument_IfThenElseWrongChildCount(t *testing.T) {
	xmlDoc := []byte(`
<root main_tree_to_execute="Main">
  <BehaviorTree ID="Main">
    <IfThenElse>
      <AlwaysSuccess/>
    </IfThenElse>
  </BehaviorTree>
</root>`)

	doc, err := ethogram.ParseDocument(xmlDoc, testRegistry())
	require.NoError(t, err)

	_, err = doc.BuildMain(ethogram.NewBlackboard())
	require.ErrorIs(t, err, ethogram.ErrWrongChildCount)
}

func TestParseDocument_SubTreeRemapsBlackboard(t *testing.T) {
	xmlDoc := []byte(`
<root main_tree_to_execute="Main">
  <BehaviorTree ID="Main">
    <Sequence>
      <SetKey value="hello" out="{greeting}"/>
      <SubTree ID="Inner" greeting="{greeting}"/>
    </Sequence>
  </BehaviorTree>
  <BehaviorTree ID="Inner">
    <SetKey value="{greeting}" out="{echoed}"/>
  </BehaviorTree>
</root>`)

	doc, err := ethogram.ParseDocument(xmlDoc, testRegistry())
	require.NoError(t, err)

	bb := ethogram.NewBlackboard()
	tree, err := doc.BuildMain(bb)
	require.NoError(t, err)

	status, err := tree.TickOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ethogram.Success, status)

	v, err := ethogram.Get[string](bb, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestParseDocument_SubTreePortRemapReadsParentKey(t *testing.T) {
	xmlDoc := []byte(`
<root main_tree_to_execute="Main">
  <BehaviorTree ID="Main">
    <SubTree ID="s" y="{x}"/>
  </BehaviorTree>
  <BehaviorTree ID="s">
    <SetKey value="{y}" out="{echoed}"/>
  </BehaviorTree>
</root>`)

	doc, err := ethogram.ParseDocument(xmlDoc, testRegistry())
	require.NoError(t, err)

	bb := ethogram.NewBlackboard()
	bb.Set("x", "7")

	tree, err := doc.BuildMain(bb)
	require.NoError(t, err)

	status, err := tree.TickOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ethogram.Success, status)
}

func TestParseDocument_SubTreeLiteralAttributeInjectsLocalValue(t *testing.T) {
	xmlDoc := []byte(`
<root main_tree_to_execute="Main">
  <BehaviorTree ID="Main">
    <SubTree ID="s" y="seven"/>
  </BehaviorTree>
  <BehaviorTree ID="s">
    <SetKey value="{y}" out="{echoed}"/>
  </BehaviorTree>
</root>`)

	doc, err := ethogram.ParseDocument(xmlDoc, testRegistry())
	require.NoError(t, err)

	status, err := mustTick(t, doc)
	require.NoError(t, err)
	assert.Equal(t, ethogram.Success, status)
}

func mustTick(t *testing.T, doc *ethogram.Document) (ethogram.NodeStatus, error) {
	t.Helper()
	tree, err := doc.BuildMain(ethogram.NewBlackboard())
	require.NoError(t, err)
	return tree.TickOnce(context.Background())
}

func TestParseDocument_AmbiguousMainTreeRequiresAttribute(t *testing.T) {
	xmlDoc := []byte(`
<root>
  <BehaviorTree ID="A"><AlwaysSuccess/></BehaviorTree>
  <BehaviorTree ID="B"><AlwaysSuccess/></BehaviorTree>
</root>`)

	_, err := ethogram.ParseDocument(xmlDoc, testRegistry())
	require.ErrorIs(t, err, ethogram.ErrBadAttribute)
}
