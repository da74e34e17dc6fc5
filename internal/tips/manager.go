// Package tips serves short fitness and nutrition tips.
package tips

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strings"

	log "github.com/sirupsen/logrus"
)

//go:embed tips.csv
var defaultTips string

type Tip struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type Manager struct {
	Tips           []*Tip
	CategoriesTips map[string][]*Tip
}

// NewDefaultManager loads the tips list shipped with the binary.
func NewDefaultManager() (*Manager, error) {
	return NewManager(csv.NewReader(strings.NewReader(defaultTips)))
}

func NewManager(tipsCsvReader *csv.Reader) (*Manager, error) {
	m := &Manager{
		CategoriesTips: make(map[string][]*Tip),
	}

	tipsCsvReader.Comma = ';'
	for {
		record, err := tipsCsvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		// TIP;CATEGORY
		if len(record) != 2 {
			return nil, fmt.Errorf("record [%s] does not have 2 elements", record)
		}

		tip := &Tip{
			Text:     strings.TrimSpace(record[0]),
			Category: strings.ToLower(strings.TrimSpace(record[1])),
		}
		if tip.Text == "" {
			continue
		}
		m.Tips = append(m.Tips, tip)
		m.CategoriesTips[tip.Category] = append(m.CategoriesTips[tip.Category], tip)
	}

	if len(m.Tips) == 0 {
		return nil, fmt.Errorf("no tips found")
	}

	log.Debugf("tips read: %d, categories: %d", len(m.Tips), len(m.CategoriesTips))
	return m, nil
}

func (m *Manager) Random() *Tip {
	return m.Tips[rand.Intn(len(m.Tips))]
}

// RandomOf picks a tip of the given category, nil when there is none.
func (m *Manager) RandomOf(category string) *Tip {
	categoryTips := m.CategoriesTips[strings.ToLower(category)]
	if len(categoryTips) == 0 {
		return nil
	}
	return categoryTips[rand.Intn(len(categoryTips))]
}
