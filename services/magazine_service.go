package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"magazine-catalog-api/config"
	"magazine-catalog-api/models"
	"magazine-catalog-api/utils"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gorm.io/gorm"
)

type MagazineService struct {
	db *gorm.DB
}

func NewMagazineService(db *gorm.DB) *MagazineService {
	if db == nil {
		db = config.DB
	}
	return &MagazineService{db: db}
}

// List pages through magazines by name. A non-empty query ranks magazines by fuzzy
// match against name, English name and ISSN instead.
func (s *MagazineService) List(ctx context.Context, query string, limit, offset int) ([]models.Magazine, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	db := s.db.WithContext(ctx)
	query = strings.TrimSpace(query)
	if query == "" {
		var total int64
		if err := db.Model(&models.Magazine{}).Count(&total).Error; err != nil {
			return nil, 0, err
		}
		var mags []models.Magazine
		if err := db.Order("name ASC, id ASC").Limit(limit).Offset(offset).Find(&mags).Error; err != nil {
			return nil, 0, err
		}
		return mags, total, nil
	}

	var candidates []models.Magazine
	if err := db.Select("id", "name", "name_en", "issn").Find(&candidates).Error; err != nil {
		return nil, 0, err
	}

	ids := rankMagazines(query, candidates)
	total := int64(len(ids))
	if offset >= len(ids) {
		return []models.Magazine{}, total, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	page := ids[offset:end]

	var mags []models.Magazine
	if err := db.Where("id IN ?", page).Find(&mags).Error; err != nil {
		return nil, 0, err
	}
	pos := make(map[uint]int, len(page))
	for i, id := range page {
		pos[id] = i
	}
	sort.Slice(mags, func(i, j int) bool { return pos[mags[i].ID] < pos[mags[j].ID] })
	return mags, total, nil
}

// rankMagazines returns matching magazine ids, closest match first.
func rankMagazines(query string, candidates []models.Magazine) []uint {
	type scored struct {
		id       uint
		name     string
		distance int
	}
	best := make(map[uint]*scored)

	consider := func(targets []string, owners []int) {
		for _, r := range fuzzy.RankFindNormalizedFold(query, targets) {
			m := candidates[owners[r.OriginalIndex]]
			if cur, ok := best[m.ID]; !ok || r.Distance < cur.distance {
				best[m.ID] = &scored{id: m.ID, name: m.Name, distance: r.Distance}
			}
		}
	}

	var names, alt []string
	var nameOwners, altOwners []int
	for i, m := range candidates {
		names = append(names, m.Name)
		nameOwners = append(nameOwners, i)
		if en := utils.StringValue(m.NameEn); en != "" {
			alt = append(alt, en)
			altOwners = append(altOwners, i)
		}
		if issn := utils.StringValue(m.ISSN); issn != "" {
			alt = append(alt, issn)
			altOwners = append(altOwners, i)
		}
	}
	consider(names, nameOwners)
	consider(alt, altOwners)

	list := make([]*scored, 0, len(best))
	for _, s := range best {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].distance != list[j].distance {
			return list[i].distance < list[j].distance
		}
		if list[i].name != list[j].name {
			return list[i].name < list[j].name
		}
		return list[i].id < list[j].id
	})

	ids := make([]uint, len(list))
	for i, s := range list {
		ids[i] = s.id
	}
	return ids
}

// Get loads one magazine with its issues, oldest first.
func (s *MagazineService) Get(ctx context.Context, id uint) (*models.Magazine, error) {
	var m models.Magazine
	err := s.db.WithContext(ctx).
		Preload("Issues", func(db *gorm.DB) *gorm.DB {
			return db.Order("publish_date ASC, issue_number ASC")
		}).
		First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMagazineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
