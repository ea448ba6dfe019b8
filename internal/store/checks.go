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

import (
	"fmt"

	"gorm.io/gorm"
)

// SaveRankCheck records one completed site-rank check. Rank 0 means the site
// did not appear within the result cap.
func (s *Store) SaveRankCheck(subjectID uint, checkedAt int64, rank int, matchedURL, matchedTitle string) (*Check, error) {
	check := Check{
		SubjectID:    subjectID,
		CheckedAt:    checkedAt,
		Found:        rank > 0,
		Rank:         rank,
		MatchedURL:   matchedURL,
		MatchedTitle: matchedTitle,
	}
	if err := s.db.Create(&check).Error; err != nil {
		return nil, fmt.Errorf("failed to save rank check: %v", err)
	}
	return &check, nil
}

// SaveExposureCheck records one completed URL-exposure check
func (s *Store) SaveExposureCheck(subjectID uint, checkedAt int64, found bool, sectionName string, sectionRank, overallRank int) (*Check, error) {
	check := Check{
		SubjectID:   subjectID,
		CheckedAt:   checkedAt,
		Found:       found,
		SectionName: sectionName,
		SectionRank: sectionRank,
		OverallRank: overallRank,
	}
	if err := s.db.Create(&check).Error; err != nil {
		return nil, fmt.Errorf("failed to save exposure check: %v", err)
	}
	return &check, nil
}

// SaveFailedCheck records a check that did not complete, so gaps in a
// timeline are distinguishable from "not found"
func (s *Store) SaveFailedCheck(subjectID uint, checkedAt int64, errMsg string) (*Check, error) {
	check := Check{
		SubjectID: subjectID,
		CheckedAt: checkedAt,
		Error:     errMsg,
	}
	if err := s.db.Create(&check).Error; err != nil {
		return nil, fmt.Errorf("failed to save failed check: %v", err)
	}
	return &check, nil
}

// GetSubjectChecks returns all checks for a subject ordered by check time,
// newest first
func (s *Store) GetSubjectChecks(subjectID uint) ([]Check, error) {
	var checks []Check
	result := s.db.Where("subject_id = ?", subjectID).Order("checked_at DESC").Find(&checks)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get checks: %v", result.Error)
	}
	return checks, nil
}

// GetLatestCheck returns the most recent check for a subject, or nil when the
// subject has no history yet
func (s *Store) GetLatestCheck(subjectID uint) (*Check, error) {
	var check Check
	result := s.db.Where("subject_id = ?", subjectID).Order("checked_at DESC").First(&check)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest check: %v", result.Error)
	}
	return &check, nil
}

// DeleteChecksBefore prunes history older than the cutoff across all subjects
func (s *Store) DeleteChecksBefore(cutoff int64) (int64, error) {
	result := s.db.Where("checked_at < ?", cutoff).Delete(&Check{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune checks: %v", result.Error)
	}
	return result.RowsAffected, nil
}
