package runtime

import (
	"github.com/cnf/structhash"
)

// HeapImage is a plain-data copy of a heap's contents.
type HeapImage struct {
	Cells []CellImage
	Avail int32
	Free  int
}

// CellImage is the payload of a single cell within a HeapImage.
type CellImage struct {
	Tag    int8
	First  int32
	Rest   int32
	Number int64
	Symbol string
}

// Image copies the heap's contents, including the free list.
func (h *Heap) Image() HeapImage {
	img := HeapImage{
		Cells: make([]CellImage, len(h.cells)),
		Avail: int32(h.avail),
		Free:  h.navail,
	}
	for i, c := range h.cells {
		img.Cells[i] = CellImage{
			Tag:    int8(c.tag),
			First:  int32(c.first),
			Rest:   int32(c.rest),
			Number: c.num,
		}
		if c.sym != nil {
			img.Cells[i].Symbol = c.sym.name
		}
	}
	return img
}

// Fingerprint returns a digest of the heap image. Two heaps with identical cell
// contents and free lists have identical fingerprints.
func (h *Heap) Fingerprint() (string, error) {
	return structhash.Hash(h.Image(), 1)
}
