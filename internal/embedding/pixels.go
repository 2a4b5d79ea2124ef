package embedding

import "image"

// CLIP image input geometry and normalization constants.
const clipImageSize = 224

var (
	clipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

// PixelValues converts img to a CHW float32 tensor of shape
// (3, clipImageSize, clipImageSize), resized with nearest-neighbor sampling
// and normalized with the CLIP channel mean/std.
func PixelValues(img image.Image) []float32 {
	b := img.Bounds()
	out := make([]float32, 3*clipImageSize*clipImageSize)
	plane := clipImageSize * clipImageSize
	for y := 0; y < clipImageSize; y++ {
		srcY := b.Min.Y + y*b.Dy()/clipImageSize
		for x := 0; x < clipImageSize; x++ {
			srcX := b.Min.X + x*b.Dx()/clipImageSize
			r, g, bl, _ := img.At(srcX, srcY).RGBA()
			i := y*clipImageSize + x
			out[i] = (float32(r>>8)/255.0 - clipMean[0]) / clipStd[0]
			out[plane+i] = (float32(g>>8)/255.0 - clipMean[1]) / clipStd[1]
			out[2*plane+i] = (float32(bl>>8)/255.0 - clipMean[2]) / clipStd[2]
		}
	}
	return out
}
