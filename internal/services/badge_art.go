package services

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/cbl-backend/internal/domain/gamification"
	"github.com/yungbote/cbl-backend/internal/platform/gcp"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

const badgeArtSize = 256

// BadgeArtService renders a PNG medallion per catalog badge and, when a
// bucket is configured, publishes it once under badges/<id>.png.
type BadgeArtService interface {
	Render(def gamification.Definition) ([]byte, error)
	PublicURL(ctx context.Context, def gamification.Definition) (string, error)
}

type badgeArtService struct {
	log    *logger.Logger
	bucket gcp.BucketService

	titleFace font.Face
	xpFace    font.Face

	mu    sync.Mutex
	cache map[string][]byte
}

var rarityPalette = map[gamification.Rarity][2]color.NRGBA{
	gamification.RarityCommon:    {{0x6B, 0x8E, 0x9F, 0xFF}, {0xD9, 0xE4, 0xEA, 0xFF}},
	gamification.RarityRare:      {{0x2F, 0x6F, 0xD6, 0xFF}, {0xC9, 0xDC, 0xFA, 0xFF}},
	gamification.RarityEpic:      {{0x7E, 0x3F, 0xC2, 0xFF}, {0xE3, 0xD1, 0xF6, 0xFF}},
	gamification.RarityLegendary: {{0xC8, 0x8A, 0x12, 0xFF}, {0xFB, 0xEB, 0xC2, 0xFF}},
}

// NewBadgeArtService uses the embedded Go fonts. bucket may be nil.
func NewBadgeArtService(log *logger.Logger, bucket gcp.BucketService) (BadgeArtService, error) {
	titleFace, err := loadFace(gobold.TTF, 96)
	if err != nil {
		return nil, fmt.Errorf("could not load badge title font: %w", err)
	}
	xpFace, err := loadFace(goregular.TTF, 28)
	if err != nil {
		return nil, fmt.Errorf("could not load badge xp font: %w", err)
	}
	return &badgeArtService{
		log:       log.With("service", "BadgeArtService"),
		bucket:    bucket,
		titleFace: titleFace,
		xpFace:    xpFace,
		cache:     map[string][]byte{},
	}, nil
}

func loadFace(ttf []byte, points float64) (font.Face, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}

func (s *badgeArtService) Render(def gamification.Definition) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if png, ok := s.cache[def.ID]; ok {
		return png, nil
	}

	palette, ok := rarityPalette[def.Rarity]
	if !ok {
		palette = rarityPalette[gamification.RarityCommon]
	}
	const size = float64(badgeArtSize)
	dc := gg.NewContext(badgeArtSize, badgeArtSize)

	dc.DrawCircle(size/2, size/2, size/2-4)
	dc.SetColor(palette[0])
	dc.Fill()
	dc.DrawCircle(size/2, size/2, size/2-22)
	dc.SetColor(palette[1])
	dc.Fill()

	// font faces are not safe for concurrent use; s.mu covers them
	dc.SetFontFace(s.titleFace)
	dc.SetColor(palette[0])
	dc.DrawStringAnchored(monogram(def.Title), size/2, size/2-10, 0.5, 0.5)

	dc.SetFontFace(s.xpFace)
	dc.DrawStringAnchored(fmt.Sprintf("%d XP", def.XP), size/2, size*0.74, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	s.cache[def.ID] = buf.Bytes()
	return buf.Bytes(), nil
}

func (s *badgeArtService) PublicURL(ctx context.Context, def gamification.Definition) (string, error) {
	if s.bucket == nil {
		return "", nil
	}
	key := "badges/" + def.ID + ".png"
	exists, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check badge art: %w", err)
	}
	if !exists {
		png, err := s.Render(def)
		if err != nil {
			return "", err
		}
		if err := s.bucket.UploadFile(ctx, key, bytes.NewReader(png)); err != nil {
			return "", fmt.Errorf("failed to upload badge art: %w", err)
		}
		s.log.Info("Published badge art", "badge_id", def.ID, "key", key)
	}
	return s.bucket.GetPublicURL(key), nil
}

// monogram takes the first letter of up to two words of title.
func monogram(title string) string {
	var out []rune
	for _, w := range strings.Fields(title) {
		for _, r := range w {
			if unicode.IsLetter(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
