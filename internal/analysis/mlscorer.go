package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/akustiklab/telaffuz/pkg/logging"
)

// MLScorer predicts an utterance quality score with a small trained
// regression network instead of the class heuristics. It implements
// the same ScoringStrategy contract: every phoneme of the utterance
// receives the model's utterance-level prediction, clamped to the
// shared score bounds. Training happens offline; this loads exported
// weights.
type MLScorer struct {
	scaler   scalerParams
	layers   []denseLayer
	fallback ScoringStrategy
	loaded   bool
	logger   logging.Logger
}

type scalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type denseLayer struct {
	weights *mat.Dense
	bias    []float64
}

type modelFile struct {
	Layers []struct {
		Weights [][]float64 `json:"weights"`
		Bias    []float64   `json:"bias"`
	} `json:"layers"`
}

// NewMLScorer loads scaler and weight files from the model directory.
// When the files are absent or malformed, the scorer degrades to the
// heuristic strategy instead of failing analysis.
func NewMLScorer(modelDir string) *MLScorer {
	s := &MLScorer{
		fallback: NewHeuristicScorer(),
		logger: logging.WithFields(logging.Fields{
			"component": "ml_scorer",
			"model_dir": modelDir,
		}),
	}

	if err := s.load(modelDir); err != nil {
		s.logger.Warn("ml model unavailable, falling back to heuristic scoring", logging.Fields{
			"error": err.Error(),
		})
		return s
	}

	s.loaded = true
	s.logger.Info("ml scoring model loaded", logging.Fields{
		"layers": len(s.layers),
	})
	return s
}

func (s *MLScorer) Name() string {
	if s.loaded {
		return "ml"
	}
	return "ml_fallback_heuristic"
}

// Score returns the model prediction for the utterance. The phoneme
// argument is accepted for contract compatibility; the model scores
// whole utterances.
func (s *MLScorer) Score(phoneme string, features *AudioFeatures) float64 {
	if !s.loaded {
		return s.fallback.Score(phoneme, features)
	}

	input := s.featureVector(features)
	if len(s.scaler.Mean) == len(input) && len(s.scaler.Scale) == len(input) {
		for i := range input {
			if s.scaler.Scale[i] != 0 {
				input[i] = (input[i] - s.scaler.Mean[i]) / s.scaler.Scale[i]
			}
		}
	}

	out := s.forward(input)
	return clamp(out, scoreFloor, scoreCeil)
}

// featureVector flattens AudioFeatures in the order the model was
// trained on: scalars first, then MFCC means and stds
func (s *MLScorer) featureVector(f *AudioFeatures) []float64 {
	vec := []float64{
		f.Duration,
		f.PitchMean,
		f.PitchStd,
		f.EnergyMean,
		f.EnergyStd,
		f.SpectralCentroid,
		f.SpectralRolloff,
		f.ZeroCrossingRate,
		f.Formants.F1,
		f.Formants.F2,
		f.Formants.F3,
	}
	vec = append(vec, f.MFCCMean...)
	vec = append(vec, f.MFCCStd...)
	return vec
}

// forward runs the network: ReLU on hidden layers, sigmoid output
func (s *MLScorer) forward(input []float64) float64 {
	x := mat.NewVecDense(len(input), input)

	for i, layer := range s.layers {
		rows, _ := layer.weights.Dims()
		out := mat.NewVecDense(rows, nil)
		out.MulVec(layer.weights, x)

		for j := 0; j < rows; j++ {
			v := out.AtVec(j) + layer.bias[j]
			if i < len(s.layers)-1 {
				// ReLU
				if v < 0 {
					v = 0
				}
			} else {
				// Sigmoid
				v = 1.0 / (1.0 + math.Exp(-v))
			}
			out.SetVec(j, v)
		}

		x = out
	}

	if x.Len() == 0 {
		return baseScore
	}
	return x.AtVec(0)
}

func (s *MLScorer) load(modelDir string) error {
	if modelDir == "" {
		return fmt.Errorf("no model directory configured")
	}

	scalerData, err := os.ReadFile(filepath.Join(modelDir, "scaler.json"))
	if err != nil {
		return fmt.Errorf("scaler params: %w", err)
	}
	if err := json.Unmarshal(scalerData, &s.scaler); err != nil {
		return fmt.Errorf("scaler params: %w", err)
	}

	weightsData, err := os.ReadFile(filepath.Join(modelDir, "model.json"))
	if err != nil {
		return fmt.Errorf("model weights: %w", err)
	}

	var model modelFile
	if err := json.Unmarshal(weightsData, &model); err != nil {
		return fmt.Errorf("model weights: %w", err)
	}
	if len(model.Layers) == 0 {
		return fmt.Errorf("model has no layers")
	}

	for li, layer := range model.Layers {
		rows := len(layer.Weights)
		if rows == 0 || len(layer.Bias) != rows {
			return fmt.Errorf("layer %d: inconsistent shape", li)
		}
		cols := len(layer.Weights[0])

		flat := make([]float64, 0, rows*cols)
		for _, row := range layer.Weights {
			if len(row) != cols {
				return fmt.Errorf("layer %d: ragged weight matrix", li)
			}
			flat = append(flat, row...)
		}

		s.layers = append(s.layers, denseLayer{
			weights: mat.NewDense(rows, cols, flat),
			bias:    layer.Bias,
		})
	}

	return nil
}
