package aarc2rc

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// flexFloat tolerates JSON numbers and numeric strings; anything else
// decodes to zero.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if num, err := strconv.ParseFloat(str, 64); err == nil {
			*f = flexFloat(num)
		}
		return nil
	}
	*f = 0
	return nil
}

// rawAARC mirrors the tolerated subset of the AARC descriptor. Unknown keys
// are ignored.
type rawAARC struct {
	CvsSize    []float64      `json:"cvsSize"`
	Points     []rawPoint     `json:"points"`
	Lines      []rawLine      `json:"lines"`
	Config     *rawAARCConfig `json:"config"`
	PointLinks []rawPointLink `json:"pointLinks"`
}

type rawPoint struct {
	ID   int       `json:"id"`
	Name string    `json:"name"`
	Pos  []float64 `json:"pos"`
	Dir  int       `json:"dir"`
	Sta  int       `json:"sta"`
}

type rawLine struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Pts    []int      `json:"pts"`
	Type   int        `json:"type"`
	IsFake bool       `json:"isFake"`
	Parent *int       `json:"parent"`
	Width  *flexFloat `json:"width"`
	PtSize *flexFloat `json:"ptSize"`
}

type rawAARCConfig struct {
	LineWidthMapped map[string]struct {
		StaSize float64 `json:"staSize"`
	} `json:"lineWidthMapped"`
}

type rawPointLink struct {
	Pts  []int `json:"pts"`
	Type int   `json:"type"`
}

// rawConfig mirrors the conversion config descriptor. Numeric caps override
// the defaults only when positive. The list-valued fields stay untyped
// because entries mix ids, names, arrays and objects.
type rawConfig struct {
	MaxLength                  *int              `json:"max_length"`
	MaxRCSteps                 *int              `json:"max_rc_steps"`
	MaxIterations              *int              `json:"max_iterations"`
	AutoGroupDistance          *float64          `json:"auto_group_distance"`
	MergeConsecutiveDuplicates *bool             `json:"merge_consecutive_duplicates"`
	OptimizeSegmentation       *bool             `json:"optimize_segmentation"`
	LinkModes                  map[string]string `json:"link_modes"`
	FriendLines                [][]interface{}   `json:"friend_lines"`
	MergedLines                [][]interface{}   `json:"merged_lines"`
	SegmentedLines             []interface{}     `json:"segmented_lines"`
}

var linkTypeNames = map[string]LinkType{
	"ThickLine":   LinkThickLine,
	"ThinLine":    LinkThinLine,
	"DottedLine1": LinkDottedLine1,
	"DottedLine2": LinkDottedLine2,
	"Group":       LinkGroup,
}

var linkModeNames = map[string]LinkMode{
	"Connect": LinkModeConnect,
	"Group":   LinkModeGroup,
	"None":    LinkModeNone,
}

// resolveLineRef turns a config entry (line name or numeric id) into a line
// id, requiring the line to exist.
func (m *Map) resolveLineRef(ref interface{}) (int, bool) {
	switch v := ref.(type) {
	case string:
		return m.lineIDByName(v)
	case float64:
		id := int(v)
		if _, ok := m.Lines[id]; ok {
			return id, true
		}
	}
	return 0, false
}

// BuildMap parses an AARC descriptor plus an optional config descriptor and
// produces the normalized map: sizes resolved, auxiliary points inserted,
// stations grouped, loops refined and simple lines flagged.
func BuildMap(aarcData, configData []byte) (*Map, error) {
	var raw rawAARC
	if err := json.Unmarshal(aarcData, &raw); err != nil {
		return nil, errors.Wrap(err, "Can't parse AARC descriptor")
	}

	m := newMap()

	if len(raw.CvsSize) >= 2 {
		m.Width = raw.CvsSize[0]
		m.Height = raw.CvsSize[1]
	}

	for _, rp := range raw.Points {
		if len(rp.Pos) < 2 {
			continue
		}
		p := &Point{
			ID:   rp.ID,
			Name: rp.Name,
			Pos:  orb.Point{rp.Pos[0], rp.Pos[1]},
			Dir:  Direction(rp.Dir),
			Type: PointType(rp.Sta),
			Size: 1.0,
		}
		m.Points[p.ID] = p
	}

	// width -> station size lookup, keyed by width scaled to avoid float keys
	lineWidthToPointSize := make(map[int]float64)
	if raw.Config != nil {
		for key, value := range raw.Config.LineWidthMapped {
			lineWidth, err := strconv.ParseFloat(key, 64)
			if err != nil {
				continue
			}
			lineWidthToPointSize[int(lineWidth*100.0+0.5)] = value.StaSize
		}
	}

	maxLineID := 0
	for _, rl := range raw.Lines {
		if rl.Type != 0 || rl.IsFake {
			continue
		}
		l := &Line{
			ID:       rl.ID,
			Name:     rl.Name,
			PointIDs: append([]int(nil), rl.Pts...),
			ParentID: -1,
		}
		l.IsLoop = len(l.PointIDs) >= 2 && l.PointIDs[0] == l.PointIDs[len(l.PointIDs)-1]
		if rl.Parent != nil {
			l.ParentID = *rl.Parent
			m.connectLines(l.ID, l.ParentID, false)
		}
		if l.ID > maxLineID {
			maxLineID = l.ID
		}

		pointSize := 0.0
		if rl.PtSize != nil {
			pointSize = float64(*rl.PtSize)
		}
		if pointSize < 1e-3 {
			if rl.Width != nil {
				lineWidth := float64(*rl.Width)
				if lineWidth == 0 {
					lineWidth = 1.0
				}
				if size, ok := lineWidthToPointSize[int(lineWidth*100.0+0.5)]; ok {
					pointSize = size
				} else {
					pointSize = lineWidth
				}
			} else {
				pointSize = 1.0
			}
		}
		for _, pid := range l.PointIDs {
			if p, ok := m.Points[pid]; ok {
				p.Size = math.Max(p.Size, pointSize)
			}
		}

		m.Lines[l.ID] = l
	}

	for _, pid := range m.sortedPointIDs() {
		if m.Points[pid].Size < 1e-3 {
			m.Points[pid].Size = 1.0
		}
	}

	if len(configData) > 0 {
		if err := m.applyConfig(configData); err != nil {
			return nil, err
		}
	}

	addAuxiliaryPoints(m)

	for _, link := range raw.PointLinks {
		if len(link.Pts) < 2 {
			continue
		}
		mode, ok := m.Config.LinkModes[LinkType(link.Type)]
		if !ok || mode == LinkModeNone {
			continue
		}
		switch mode {
		case LinkModeConnect:
			maxLineID++
			l := &Line{
				ID:       maxLineID,
				Name:     "PointLink_" + strconv.Itoa(maxLineID),
				PointIDs: []int{link.Pts[0], link.Pts[1]},
				ParentID: -1,
			}
			m.Lines[l.ID] = l
		case LinkModeGroup:
			m.joinStations(link.Pts[0], link.Pts[1])
		}
	}

	m.autoGroupStations()
	m.connectCommonParents()

	for lineID, segLen := range m.Config.SegmentedLines {
		if segLen >= 0 && segLen <= m.Config.MaxRCSteps {
			m.Config.SegmentedLines[lineID] = m.Config.MaxRCSteps + 1
		}
	}

	m.refineLoops()
	m.flagSimpleLines()

	return m, nil
}

func (m *Map) applyConfig(configData []byte) error {
	var rc rawConfig
	if err := json.Unmarshal(configData, &rc); err != nil {
		return errors.Wrap(err, "Can't parse config descriptor")
	}

	if rc.MaxLength != nil && *rc.MaxLength > 0 {
		m.Config.MaxLength = *rc.MaxLength
	}
	if rc.MaxRCSteps != nil && *rc.MaxRCSteps > 0 {
		m.Config.MaxRCSteps = *rc.MaxRCSteps
	}
	if rc.MaxIterations != nil && *rc.MaxIterations > 0 {
		m.Config.MaxIterations = *rc.MaxIterations
	}
	if rc.AutoGroupDistance != nil && *rc.AutoGroupDistance > 0 {
		m.Config.AutoGroupDistance = *rc.AutoGroupDistance
	}
	if rc.MergeConsecutiveDuplicates != nil {
		m.Config.MergeConsecutiveDuplicates = *rc.MergeConsecutiveDuplicates
	}
	if rc.OptimizeSegmentation != nil {
		m.Config.OptimizeSegmentation = *rc.OptimizeSegmentation
	}

	for key, value := range rc.LinkModes {
		linkType, okType := linkTypeNames[key]
		linkMode, okMode := linkModeNames[value]
		if okType && okMode {
			m.Config.LinkModes[linkType] = linkMode
		}
	}

	for _, pair := range rc.FriendLines {
		if len(pair) != 2 {
			continue
		}
		id1, ok1 := m.resolveLineRef(pair[0])
		id2, ok2 := m.resolveLineRef(pair[1])
		if ok1 && ok2 {
			m.connectLines(id1, id2, true)
		}
	}

	for _, pair := range rc.MergedLines {
		if len(pair) != 2 {
			continue
		}
		id1, ok1 := m.resolveLineRef(pair[0])
		id2, ok2 := m.resolveLineRef(pair[1])
		if ok1 && ok2 {
			m.mergeLines(id1, id2, true)
		}
	}

	// segmented_lines entries come in three shapes: a bare id/name or an
	// array of them gets the optimizer group -k (k = 1-based entry index),
	// an object with line/lines may carry an explicit positive length.
	for paramInd, entry := range rc.SegmentedLines {
		groupKey := -(paramInd + 1)
		switch v := entry.(type) {
		case []interface{}:
			for _, sub := range v {
				if id, ok := m.resolveLineRef(sub); ok {
					m.Config.SegmentedLines[id] = groupKey
				}
			}
		case string, float64:
			if id, ok := m.resolveLineRef(v); ok {
				m.Config.SegmentedLines[id] = groupKey
			}
		case map[string]interface{}:
			segLen := groupKey
			if sl, ok := v["segment_length"].(float64); ok && int(sl) > 0 {
				segLen = int(sl)
			}
			if lineRef, ok := v["line"]; ok {
				if id, ok := m.resolveLineRef(lineRef); ok {
					m.Config.SegmentedLines[id] = segLen
				}
			} else if lineRefs, ok := v["lines"].([]interface{}); ok {
				for _, sub := range lineRefs {
					if id, ok := m.resolveLineRef(sub); ok {
						m.Config.SegmentedLines[id] = segLen
					}
				}
			}
		}
	}

	return nil
}

// autoGroupStations joins every pair of stations closer than the configured
// distance scaled by their mean size.
func (m *Map) autoGroupStations() {
	pointIDs := m.sortedPointIDs()
	for i, id1 := range pointIDs {
		p1 := m.Points[id1]
		if p1.Type != TypeStation {
			continue
		}
		for _, id2 := range pointIDs[i+1:] {
			p2 := m.Points[id2]
			if p2.Type != TypeStation {
				continue
			}
			groupDistance := m.Config.AutoGroupDistance * (p1.Size + p2.Size) / 2.0
			if vecLength(vecSub(p1.Pos, p2.Pos)) <= groupDistance+1e-3 {
				m.joinStations(id1, id2)
			}
		}
	}
}

func (m *Map) connectCommonParents() {
	lineIDs := m.sortedLineIDs()
	for i, id1 := range lineIDs {
		line1 := m.Lines[id1]
		if line1.ParentID == -1 {
			continue
		}
		for _, id2 := range lineIDs[i+1:] {
			if line1.ParentID == m.Lines[id2].ParentID {
				m.connectLines(id1, id2, false)
			}
		}
	}
}

// refineLoops promotes a non-loop line to a loop when its point sequence is
// periodic, truncating it to a single period plus the closing point.
func (m *Map) refineLoops() {
	for _, lineID := range m.sortedLineIDs() {
		line := m.Lines[lineID]
		if line.IsLoop {
			continue
		}
		period := 0
		for i := 1; i < len(line.PointIDs); i++ {
			if period == 0 && line.PointIDs[i] == line.PointIDs[0] {
				period = i
			} else if period != 0 && line.PointIDs[i] != line.PointIDs[i%period] {
				period = 0
				break
			}
		}
		if period != 0 {
			line.IsLoop = true
			line.PointIDs = line.PointIDs[:period+1]
		}
	}
}

// flagSimpleLines marks lines that take the direct emission shortcut: no
// segmentation entry, no friend or merge relations and no repeated station
// apart from a loop's closing point.
func (m *Map) flagSimpleLines() {
	for _, lineID := range m.sortedLineIDs() {
		line := m.Lines[lineID]
		line.IsSimple = false
		if _, ok := m.Config.SegmentedLines[lineID]; ok {
			continue
		}
		related := false
		for pair := range m.Config.FriendLines {
			if pair.a == lineID || pair.b == lineID {
				related = true
				break
			}
		}
		if !related {
			for pair := range m.Config.MergedLines {
				if pair.a == lineID || pair.b == lineID {
					related = true
					break
				}
			}
		}
		if related {
			continue
		}
		limit := len(line.PointIDs)
		if line.IsLoop {
			limit--
		}
		seen := make(map[int]struct{})
		duplicated := false
		for i := 0; i < limit; i++ {
			pid := line.PointIDs[i]
			if p, ok := m.Points[pid]; ok && p.Type == TypeStation {
				if _, dup := seen[pid]; dup {
					duplicated = true
					break
				}
				seen[pid] = struct{}{}
			}
		}
		if duplicated {
			continue
		}
		line.IsSimple = true
	}
}
