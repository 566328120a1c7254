package fourier

import (
	dsp "gonum.org/v1/gonum/dsp/fourier"

	"github.com/nvr-ai/go-lam/common"
)

// plan2D holds the 1-D transforms for a fixed H x W size. A plan carries work
// buffers and must not be shared between goroutines.
type plan2D struct {
	height, width int
	rows, cols    *dsp.CmplxFFT
	line, out     []complex128
}

func newPlan2D(height, width int) *plan2D {
	n := max(height, width)
	p := &plan2D{
		height: height,
		width:  width,
		line:   make([]complex128, n),
		out:    make([]complex128, n),
	}
	// A length-1 transform is the identity and needs no plan.
	if width > 1 {
		p.rows = dsp.NewCmplxFFT(width)
	}
	if height > 1 {
		p.cols = dsp.NewCmplxFFT(height)
	}
	return p
}

// transform runs the 1-D transform over every row and then every column of
// data in place. inverse selects the unnormalized backward transform.
func (p *plan2D) transform(data []complex128, inverse bool) {
	apply := func(f *dsp.CmplxFFT, n int) {
		if n == 1 {
			p.out[0] = p.line[0]
			return
		}
		if inverse {
			f.Sequence(p.out[:n], p.line[:n])
		} else {
			f.Coefficients(p.out[:n], p.line[:n])
		}
	}

	w, h := p.width, p.height
	for y := 0; y < h; y++ {
		copy(p.line[:w], data[y*w:(y+1)*w])
		apply(p.rows, w)
		copy(data[y*w:(y+1)*w], p.out[:w])
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			p.line[y] = data[y*w+x]
		}
		apply(p.cols, h)
		for y := 0; y < h; y++ {
			data[y*w+x] = p.out[y]
		}
	}
}

// FFT2 returns the forward 2-D DFT of a real row-major H x W plane:
// X[k,l] = sum_{y,x} v[y,x] exp(-2*pi*i*(k*y/H + l*x/W)).
func FFT2(plane []float64, height, width int) (Spectrum, error) {
	if height <= 0 || width <= 0 || len(plane) != height*width {
		return Spectrum{}, common.NewShapeError("fourier.FFT2", "%d values do not fit %dx%d", len(plane), height, width)
	}
	data := make([]complex128, len(plane))
	for i, v := range plane {
		data[i] = complex(v, 0)
	}
	newPlan2D(height, width).transform(data, false)
	return fromComplex(height, width, data, 1), nil
}

// FFT2Spectrum returns the forward 2-D DFT of a complex array.
func FFT2Spectrum(s Spectrum) Spectrum {
	data := toComplex(s)
	newPlan2D(s.height, s.width).transform(data, false)
	return fromComplex(s.height, s.width, data, 1)
}

// IFFT2 returns the inverse 2-D DFT, normalized by 1/(H*W) so that
// IFFT2(FFT2(v)) == v.
func IFFT2(s Spectrum) Spectrum {
	data := toComplex(s)
	newPlan2D(s.height, s.width).transform(data, true)
	return fromComplex(s.height, s.width, data, 1/float64(s.height*s.width))
}

func toComplex(s Spectrum) []complex128 {
	data := make([]complex128, s.Len())
	for i := range data {
		data[i] = complex(s.re[i], s.im[i])
	}
	return data
}

func fromComplex(height, width int, data []complex128, scale float64) Spectrum {
	return Build(height, width, func(i int) (float64, float64) {
		return real(data[i]) * scale, imag(data[i]) * scale
	})
}
