package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/config"
	"github.com/cardwall/core/internal/infrastructure/logger"
	"github.com/cardwall/core/internal/ports"
)

// TileService mirrors map tiles into local storage so location cards keep
// rendering offline. Verification is best effort: a tile that cannot be
// fetched is simply absent from the answer, never an error.
type TileService struct {
	tileRepo ports.TileRepository
	client   *http.Client
	cfg      config.TilesConfig
	logger   *logger.Logger
}

// NewTileService creates a new tile service.
func NewTileService(tileRepo ports.TileRepository, cfg config.TilesConfig, logger *logger.Logger) *TileService {
	return &TileService{
		tileRepo: tileRepo,
		client:   &http.Client{Timeout: cfg.DownloadTimeout},
		cfg:      cfg,
		logger:   logger,
	}
}

// VerifyTiles ensures the requested tiles exist locally, downloading missing
// ones from the origin concurrently, and returns the serving path of every
// tile that is available afterwards.
func (s *TileService) VerifyTiles(ctx context.Context, zoom int, tiles []entities.Tile) []entities.TileRef {
	var wg sync.WaitGroup
	var mu sync.Mutex
	refs := []entities.TileRef{}

	for _, tile := range tiles {
		wg.Add(1)
		go func(tile entities.Tile) {
			defer wg.Done()
			if !s.ensureTile(ctx, zoom, tile) {
				return
			}
			mu.Lock()
			refs = append(refs, entities.TileRef{
				X:    tile.X,
				Y:    tile.Y,
				Path: fmt.Sprintf("/api/tiles/%d/%d/%d", zoom, tile.X, tile.Y),
			})
			mu.Unlock()
		}(tile)
	}
	wg.Wait()

	return refs
}

func (s *TileService) ensureTile(ctx context.Context, zoom int, tile entities.Tile) bool {
	exists, err := s.tileRepo.Exists(ctx, zoom, tile.X, tile.Y)
	if err != nil {
		s.logger.Warnw("Tile lookup failed", "zoom", zoom, "x", tile.X, "y", tile.Y, "error", err)
		return false
	}
	if exists {
		return true
	}

	image, err := s.download(ctx, zoom, tile)
	if err != nil {
		s.logger.Warnw("Tile download failed", "zoom", zoom, "x", tile.X, "y", tile.Y, "error", err)
		return false
	}
	if err := s.tileRepo.Insert(ctx, zoom, tile.X, tile.Y, image); err != nil {
		s.logger.Warnw("Tile store failed", "zoom", zoom, "x", tile.X, "y", tile.Y, "error", err)
		return false
	}
	return true
}

func (s *TileService) download(ctx context.Context, zoom int, tile entities.Tile) ([]byte, error) {
	url := fmt.Sprintf(s.cfg.OriginURL, zoom, tile.X, tile.Y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build tile request: %w", err)
	}
	req.Header.Set("User-Agent", "cardwall/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tile: origin returned %d", resp.StatusCode)
	}
	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tile body: %w", err)
	}
	return image, nil
}

// GetTile returns the stored bytes of one tile.
func (s *TileService) GetTile(ctx context.Context, zoom, x, y int) ([]byte, error) {
	return s.tileRepo.Get(ctx, zoom, x, y)
}
