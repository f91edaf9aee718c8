package image

import (
	"image"

	"golang.org/x/image/draw"
)

// Preprocess 縮圖、灰階、Otsu 二值化，再以 3x3 中值濾波去除雜點
func Preprocess(img image.Image, maxDimension int) *image.Gray {
	gray := Grayscale(downscale(img, maxDimension))
	binary := Binarize(gray, OtsuThreshold(gray))
	return MedianFilter(binary)
}

// downscale 長邊超過 maxDimension 時等比例縮小
func downscale(img image.Image, maxDimension int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if maxDimension <= 0 || longest <= maxDimension {
		return img
	}

	nw := max(1, w*maxDimension/longest)
	nh := max(1, h*maxDimension/longest)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Grayscale 轉為灰階，座標原點移到 (0,0)
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// OtsuThreshold 以 Otsu 法計算使類間變異數最大的閾值
func OtsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[g.GrayAt(x, y).Y]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 128
	}

	var sum float64
	for v, c := range hist {
		sum += float64(v * c)
	}

	var (
		sumB      float64
		weightB   int
		maxVar    float64
		threshold uint8
	)
	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > maxVar {
			maxVar = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// Binarize 大於閾值為白 (255)，其餘為黑 (0)
func Binarize(g *image.Gray, threshold uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := out.PixOffset(x, y)
			if g.GrayAt(x, y).Y > threshold {
				out.Pix[i] = 255
			}
		}
	}
	return out
}

// MedianFilter 3x3 中值濾波，邊緣以最近像素補齊
func MedianFilter(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	var window [9]uint8
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px := clamp(x+dx, b.Min.X, b.Max.X-1)
					py := clamp(y+dy, b.Min.Y, b.Max.Y-1)
					window[n] = g.GrayAt(px, py).Y
					n++
				}
			}
			out.Pix[out.PixOffset(x, y)] = median9(window)
		}
	}
	return out
}

func median9(w [9]uint8) uint8 {
	for i := 1; i < len(w); i++ {
		for j := i; j > 0 && w[j] < w[j-1]; j-- {
			w[j], w[j-1] = w[j-1], w[j]
		}
	}
	return w[4]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
