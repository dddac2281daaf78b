package midea

import "github.com/ferecasa/ac-controller/internal/model"

// Source turns a normalized command into the train to transmit. Two
// implementations exist: ComputedSource derives the train from the frame
// encoding, LiteralSource plays back captured recordings. The controller is
// indifferent to which one it was built with.
type Source interface {
	Train(cmd model.Command) (PulseTrain, error)
}

// ComputedSource encodes commands through the nibble/frame derivation.
type ComputedSource struct{}

func (ComputedSource) Train(cmd model.Command) (PulseTrain, error) {
	return Encode(Frame(cmd)), nil
}
