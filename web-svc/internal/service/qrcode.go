package service

import (
	"github.com/skip2/go-qrcode"
)

type DefaultQRGenerator struct {
	Size int
}

func (g DefaultQRGenerator) Generate(link string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(link, qrcode.Medium, size)
}
