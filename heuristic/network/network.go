// Package network is a small trainable policy and value network built on
// GoMLX. The board is read from the mover's perspective through one tanh
// hidden layer into a softmax policy head and a tanh value head.
package network

import (
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/onezer00/zero-play/game"
	"github.com/onezer00/zero-play/heuristic"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/backends/simplego"
	"github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/checkpoints"
	"github.com/gomlx/gomlx/ml/data"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/train"
	"github.com/gomlx/gomlx/ml/train/losses"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrCheckpointMismatch = errors.New("checkpoint does not match network")

var _ heuristic.Trainable = (*Network)(nil)

// Hyperparameters stored with the weights so Load can reject checkpoints of
// another shape.
const (
	paramGame    = "network_game"
	paramInputs  = "network_inputs"
	paramHidden  = "network_hidden"
	paramOutputs = "network_outputs"
)

// Every network shares one pure Go backend.
var defaultBackend = sync.OnceValues(func() (backends.Backend, error) {
	return backends.NewWithConfig(simplego.BackendName)
})

type Option func(n *Network)

type Network struct {
	game    game.Game
	inputs  int
	hidden  int
	outputs int

	learningRate float64
	epochs       int
	batchSize    int
	seed         uint64

	backend backends.Backend

	// mu guards the context and every executor built on it.
	mu       sync.Mutex
	ctx      *context.Context
	evalExec *context.Exec
	lossExec *context.Exec
	trainer  *train.Trainer
}

func WithHidden(hidden int) Option {
	return func(n *Network) {
		if hidden > 0 {
			n.hidden = hidden
		}
	}
}

func WithLearningRate(rate float64) Option {
	return func(n *Network) {
		if rate > 0 {
			n.learningRate = rate
		}
	}
}

func WithEpochs(epochs int) Option {
	return func(n *Network) {
		if epochs > 0 {
			n.epochs = epochs
		}
	}
}

// WithBatchSize sets how many examples each optimizer step samples.
func WithBatchSize(size int) Option {
	return func(n *Network) {
		if size > 0 {
			n.batchSize = size
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(n *Network) {
		n.seed = seed
	}
}

// New creates a network sized for the game. Its weights are drawn from the
// seed, so two networks with the same options evaluate identically.
func New(g game.Game, options ...Option) (*Network, error) {
	n := &Network{ // Default values
		game:         g,
		inputs:       len(g.NewBoard()),
		outputs:      g.MoveCount(),
		hidden:       64,
		learningRate: 0.01,
		epochs:       10,
		batchSize:    32,
		seed:         1,
	}
	for _, option := range options {
		option(n)
	}

	backend, err := defaultBackend()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create backend")
	}
	n.backend = backend

	ctx := context.New()
	ctx.SetParam(context.ParamInitialSeed, int64(n.seed))
	ctx.SetParam(paramGame, g.Name())
	ctx.SetParam(paramInputs, n.inputs)
	ctx.SetParam(paramHidden, n.hidden)
	ctx.SetParam(paramOutputs, n.outputs)
	if err := n.attach(ctx); err != nil {
		return nil, err
	}

	// Running the model once creates the weights, so a fresh network can be
	// saved before it is trained.
	if _, _, err := n.Evaluate(g.NewBoard()); err != nil {
		return nil, errors.WithMessage(err, "failed to initialize weights")
	}
	return n, nil
}

// attach builds the executors for ctx and makes it the live set of weights.
func (n *Network) attach(ctx *context.Context) error {
	ctx = ctx.Checked(false)
	evalExec, err := context.NewExecAny(n.backend, ctx, func(ctx *context.Context, x *graph.Node) (*graph.Node, *graph.Node) {
		logits, value := n.model(ctx, x)
		return graph.Softmax(logits, -1), value
	})
	if err != nil {
		return errors.Wrap(err, "failed to build evaluation graph")
	}
	lossExec, err := context.NewExecAny(n.backend, ctx, func(ctx *context.Context, inputs []*graph.Node) *graph.Node {
		logits, value := n.model(ctx, inputs[0])
		return lossFn(inputs[1:], []*graph.Node{logits, value})
	})
	if err != nil {
		return errors.Wrap(err, "failed to build loss graph")
	}
	lossExec.SetMaxCache(-1)

	modelFn := func(ctx *context.Context, _ any, inputs []*graph.Node) []*graph.Node {
		logits, value := n.model(ctx, inputs[0])
		return []*graph.Node{logits, value}
	}
	optimizer := optimizers.Adam().LearningRate(n.learningRate).Done()

	n.ctx = ctx
	n.evalExec = evalExec
	n.lossExec = lossExec
	n.trainer = train.NewTrainer(n.backend, ctx, modelFn, lossFn, optimizer, nil, nil)
	return nil
}

func (n *Network) model(ctx *context.Context, x *graph.Node) (logits, value *graph.Node) {
	hidden := graph.Tanh(layers.DenseWithBias(ctx.In("hidden"), x, n.hidden))
	logits = layers.DenseWithBias(ctx.In("policy"), hidden, n.outputs)
	value = graph.Tanh(layers.DenseWithBias(ctx.In("value"), hidden, 1))
	return logits, value
}

// lossFn is the cross-entropy of the policy logits against the visit
// distribution plus the squared value error.
func lossFn(labels, predictions []*graph.Node) *graph.Node {
	policy := losses.CategoricalCrossEntropyLogits(labels[:1], predictions[:1])
	value := losses.MeanSquaredError(labels[1:], predictions[1:])
	return graph.Add(policy, value)
}

// encode signs every space by the player to move: own pieces are 1,
// the opponent's -1.
func (n *Network) encode(flat []float32, board game.Board) {
	player := n.game.ActivePlayer(board)
	for i, p := range board {
		flat[i] = float32(p * player)
	}
}

func (n *Network) Evaluate(board game.Board) ([]float64, float64, error) {
	if len(board) != n.inputs {
		return nil, 0, errors.Errorf("board has %d spaces, network expects %d", len(board), n.inputs)
	}
	flat := make([]float32, n.inputs)
	n.encode(flat, board)
	x := tensors.FromFlatDataAndDimensions(flat, 1, n.inputs)

	var outputs []*tensors.Tensor
	n.mu.Lock()
	err := exceptions.TryCatch[error](func() { outputs = n.evalExec.Call(x) })
	n.mu.Unlock()
	x.FinalizeAll()
	if err != nil {
		return nil, 0, errors.WithMessage(err, "failed to evaluate board")
	}
	defer finalize(outputs)

	probs := tensors.CopyFlatData[float32](outputs[0])
	priors := make([]float64, len(probs))
	for i, p := range probs {
		priors[i] = float64(p)
	}
	value := tensors.CopyFlatData[float32](outputs[1])[0]
	return priors, float64(value), nil
}

func (n *Network) check(examples []heuristic.TrainingExample) error {
	for i, example := range examples {
		if len(example.Board) != n.inputs || len(example.Policy) != n.outputs {
			return errors.Errorf("example %d has %d spaces and %d policy entries, network expects %d and %d",
				i, len(example.Board), len(example.Policy), n.inputs, n.outputs)
		}
	}
	return nil
}

// batch lays the examples out as the model input and the policy and value
// labels.
func (n *Network) batch(examples []heuristic.TrainingExample) (x, policy, value []float32) {
	x = make([]float32, len(examples)*n.inputs)
	policy = make([]float32, len(examples)*n.outputs)
	value = make([]float32, len(examples))
	for i, example := range examples {
		n.encode(x[i*n.inputs:(i+1)*n.inputs], example.Board)
		for k, p := range example.Policy {
			policy[i*n.outputs+k] = float32(p)
		}
		value[i] = float32(example.Value)
	}
	return x, policy, value
}

// Train runs the optimizer for the configured number of epochs. Each step
// samples a full batch with replacement, so every step has the same shape.
func (n *Network) Train(examples []heuristic.TrainingExample) error {
	if err := n.check(examples); err != nil {
		return err
	}
	if len(examples) == 0 {
		return nil
	}
	x, policy, value := n.batch(examples)
	ds, err := data.InMemoryFromData(n.backend, "self-play",
		[]any{tensors.FromFlatDataAndDimensions(x, len(examples), n.inputs)},
		[]any{
			tensors.FromFlatDataAndDimensions(policy, len(examples), n.outputs),
			tensors.FromFlatDataAndDimensions(value, len(examples), 1),
		})
	if err != nil {
		return errors.Wrap(err, "failed to build training dataset")
	}
	defer ds.FinalizeAll()
	ds.RandomWithReplacement().BatchSize(n.batchSize, true).Infinite(true)

	steps := n.epochs * ((len(examples) + n.batchSize - 1) / n.batchSize)
	n.mu.Lock()
	defer n.mu.Unlock()
	metrics, err := train.NewLoop(n.trainer).RunSteps(ds, steps)
	if err != nil {
		return errors.WithMessage(err, "failed to train network")
	}
	defer finalize(metrics)
	log.Debug().Int("examples", len(examples)).Int("steps", steps).
		Float32("loss", tensors.CopyFlatData[float32](metrics[0])[0]).Msg("Trained network")
	return nil
}

// Loss is the mean training loss over the examples.
func (n *Network) Loss(examples []heuristic.TrainingExample) (float64, error) {
	if err := n.check(examples); err != nil {
		return 0, err
	}
	if len(examples) == 0 {
		return 0, nil
	}
	x, policy, value := n.batch(examples)
	inputs := []*tensors.Tensor{
		tensors.FromFlatDataAndDimensions(x, len(examples), n.inputs),
		tensors.FromFlatDataAndDimensions(policy, len(examples), n.outputs),
		tensors.FromFlatDataAndDimensions(value, len(examples), 1),
	}
	defer finalize(inputs)

	var outputs []*tensors.Tensor
	n.mu.Lock()
	err := exceptions.TryCatch[error](func() { outputs = n.lossExec.Call(inputs) })
	n.mu.Unlock()
	if err != nil {
		return 0, errors.WithMessage(err, "failed to compute loss")
	}
	defer finalize(outputs)
	return float64(tensors.CopyFlatData[float32](outputs[0])[0]), nil
}

// Save writes the weights, optimizer state and layer sizes as a checkpoint
// directory. It is staged in a sibling directory and renamed into place so a
// crash never leaves a partial checkpoint behind.
func (n *Network) Save(path string) error {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return errors.Wrap(err, "failed to create checkpoint directory")
	}
	tmp, err := os.MkdirTemp(parent, ".checkpoint-*")
	if err != nil {
		return errors.Wrap(err, "failed to create checkpoint directory")
	}
	defer os.RemoveAll(tmp)

	n.mu.Lock()
	err = exceptions.TryCatch[error](func() {
		handler, err := checkpoints.Build(n.ctx).Dir(tmp).Done()
		if err == nil {
			err = handler.Save()
		}
		if err != nil {
			panic(err)
		}
	})
	n.mu.Unlock()
	if err != nil {
		return errors.WithMessagef(err, "failed to write checkpoint %s", path)
	}

	if err := os.RemoveAll(path); err != nil {
		return errors.Wrap(err, "failed to replace checkpoint")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "failed to rename checkpoint")
	}
	return nil
}

// Load replaces the weights with those of a checkpoint written by Save for
// the same game and layer sizes.
func (n *Network) Load(path string) error {
	loaded := context.New()
	err := exceptions.TryCatch[error](func() {
		if _, err := checkpoints.Load(loaded).Dir(path).Immediate().Done(); err != nil {
			panic(err)
		}
	})
	if err != nil {
		return errors.WithMessagef(err, "failed to read checkpoint %s", path)
	}

	name := context.GetParamOr(loaded, paramGame, "")
	inputs := context.GetParamOr(loaded, paramInputs, 0)
	hidden := context.GetParamOr(loaded, paramHidden, 0)
	outputs := context.GetParamOr(loaded, paramOutputs, 0)
	if name != n.game.Name() || inputs != n.inputs || hidden != n.hidden || outputs != n.outputs {
		return errors.Wrapf(ErrCheckpointMismatch, "%s is %s %dx%dx%d, network is %s %dx%dx%d", path,
			name, inputs, hidden, outputs, n.game.Name(), n.inputs, n.hidden, n.outputs)
	}
	for layer, dims := range map[string][]int{
		"hidden": {n.inputs, n.hidden},
		"policy": {n.hidden, n.outputs},
		"value":  {n.hidden, 1},
	} {
		weights := loaded.In(layer).In("dense").GetVariable("weights")
		if weights == nil || !slices.Equal(weights.Shape().Dimensions, dims) {
			return errors.Wrapf(ErrCheckpointMismatch, "%s has malformed %s weights", path, layer)
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	old := []*context.Exec{n.evalExec, n.lossExec}
	if err := n.attach(loaded); err != nil {
		return err
	}
	for _, exec := range old {
		exec.Finalize()
	}
	return nil
}

func finalize(ts []*tensors.Tensor) {
	for _, t := range ts {
		t.FinalizeAll()
	}
}
