// Copyright 2025 Serptrace Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

// Subject kind constants
const (
	KindSiteRank    = "site_rank"    // keyword + site domain
	KindURLExposure = "url_exposure" // keyword + exact destination URL
)

// Subject is one tracked keyword/target pair. Repeated checks of the same
// pair attach to the same subject, forming its rank timeline.
type Subject struct {
	ID        uint    `gorm:"primaryKey"`
	Kind      string  `gorm:"not null;index:idx_subject_kind"` // site_rank or url_exposure
	Keyword   string  `gorm:"not null"`
	Target    string  `gorm:"not null"` // site URL or destination URL, as given by the caller
	Checks    []Check `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
	CreatedAt int64   `gorm:"autoCreateTime"`
	UpdatedAt int64   `gorm:"autoUpdateTime"`
}

// Check is one completed check of a subject. A check where the target did
// not appear has Found=false and zero ranks; a check that failed structurally
// (launch, navigation, snapshot) has Error set and everything else zero.
type Check struct {
	ID           uint   `gorm:"primaryKey"`
	SubjectID    uint   `gorm:"not null;index"`
	CheckedAt    int64  `gorm:"not null;index"`
	Found        bool   `gorm:"not null;default:false"`
	Rank         int    `gorm:"default:0"` // site-rank position, 0 when absent
	SectionName  string `gorm:"type:text"` // exposure only
	SectionRank  int    `gorm:"default:0"` // exposure only
	OverallRank  int    `gorm:"default:0"` // exposure only
	MatchedURL   string `gorm:"type:text"` // exact href at the matched position
	MatchedTitle string `gorm:"type:text"`
	Error        string `gorm:"type:text"`
	CreatedAt    int64  `gorm:"autoCreateTime"`
}
