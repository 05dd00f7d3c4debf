package gpu

// ImageRole tags one half of a ping-pong pair.
type ImageRole int

const (
	// RoleInput is the image the compute stage reads this frame.
	RoleInput ImageRole = iota
	// RoleOutput is the image the compute stage writes and the render
	// stage samples this frame.
	RoleOutput
)

// ImagePair is a double-buffered pair of simulation images whose read and
// write roles swap exactly once per frame. Only the frame scheduler calls
// Swap; the stages see the pair read-only.
type ImagePair struct {
	images [2]*StorageImage
	output int
}

// NewImagePair pairs an initial input image with an output image.
func NewImagePair(input, output *StorageImage) *ImagePair {
	return &ImagePair{images: [2]*StorageImage{input, output}, output: 1}
}

// Input returns this frame's read image.
func (p *ImagePair) Input() *StorageImage {
	return p.images[1-p.output]
}

// Output returns this frame's write image.
func (p *ImagePair) Output() *StorageImage {
	return p.images[p.output]
}

// Images returns the pair in input, output order, the order the compute
// shader's descriptor slots expect.
func (p *ImagePair) Images() []*StorageImage {
	return []*StorageImage{p.Input(), p.Output()}
}

// Swap exchanges the roles. Swapping twice restores the original
// assignment.
func (p *ImagePair) Swap() {
	p.output = 1 - p.output
}

// Release destroys both images.
func (p *ImagePair) Release() {
	for _, img := range p.images {
		if img != nil {
			img.Release()
		}
	}
}
