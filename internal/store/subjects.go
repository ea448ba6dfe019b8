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

// GetOrCreateSubject returns the subject for a keyword/target pair, creating
// it on first sight
func (s *Store) GetOrCreateSubject(kind, keyword, target string) (*Subject, error) {
	var subject Subject
	result := s.db.Where("kind = ? AND keyword = ? AND target = ?", kind, keyword, target).First(&subject)
	if result.Error == nil {
		return &subject, nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up subject: %v", result.Error)
	}

	subject = Subject{Kind: kind, Keyword: keyword, Target: target}
	if err := s.db.Create(&subject).Error; err != nil {
		return nil, fmt.Errorf("failed to create subject: %v", err)
	}
	return &subject, nil
}

// GetSubjects returns all subjects of a kind, most recently updated first
func (s *Store) GetSubjects(kind string) ([]Subject, error) {
	var subjects []Subject
	result := s.db.Where("kind = ?", kind).Order("updated_at DESC").Find(&subjects)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get subjects: %v", result.Error)
	}
	return subjects, nil
}

// DeleteSubject deletes a subject and its whole check history (cascade)
func (s *Store) DeleteSubject(subjectID uint) error {
	result := s.db.Delete(&Subject{}, subjectID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete subject: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subject %d not found", subjectID)
	}
	return nil
}
