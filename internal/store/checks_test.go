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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStoreForTesting(dbPath)
	require.NoError(t, err, "failed to create store")
	return s
}

func TestSaveRankCheck(t *testing.T) {
	s := newTestStore(t)

	subject, err := s.GetOrCreateSubject(KindSiteRank, "강남 맛집", "blog.naver.com")
	require.NoError(t, err)

	now := time.Now().Unix()

	t.Run("RankedCheck_MarksFound", func(t *testing.T) {
		check, err := s.SaveRankCheck(subject.ID, now, 3, "https://blog.naver.com/foodie/223", "강남 맛집 총정리")
		require.NoError(t, err)
		assert.True(t, check.Found)
		assert.Equal(t, 3, check.Rank)
		assert.Equal(t, "https://blog.naver.com/foodie/223", check.MatchedURL)
	})

	t.Run("UnrankedCheck_IsNotFound", func(t *testing.T) {
		check, err := s.SaveRankCheck(subject.ID, now+60, 0, "", "")
		require.NoError(t, err)
		assert.False(t, check.Found)
		assert.Zero(t, check.Rank)
	})

	t.Run("HistoryIsNewestFirst", func(t *testing.T) {
		checks, err := s.GetSubjectChecks(subject.ID)
		require.NoError(t, err)
		require.Len(t, checks, 2)
		assert.Equal(t, now+60, checks[0].CheckedAt)
		assert.Equal(t, now, checks[1].CheckedAt)
	})

	t.Run("LatestCheck", func(t *testing.T) {
		latest, err := s.GetLatestCheck(subject.ID)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, now+60, latest.CheckedAt)
	})
}

func TestSaveExposureCheck(t *testing.T) {
	s := newTestStore(t)

	subject, err := s.GetOrCreateSubject(KindURLExposure, "캠핑용품", "https://blog.naver.com/camper/456")
	require.NoError(t, err)

	check, err := s.SaveExposureCheck(subject.ID, time.Now().Unix(), true, "뷰", 2, 7)
	require.NoError(t, err)
	assert.True(t, check.Found)
	assert.Equal(t, "뷰", check.SectionName)
	assert.Equal(t, 2, check.SectionRank)
	assert.Equal(t, 7, check.OverallRank)
}

func TestSaveFailedCheck(t *testing.T) {
	s := newTestStore(t)

	subject, err := s.GetOrCreateSubject(KindSiteRank, "제주 펜션", "jejustay.co.kr")
	require.NoError(t, err)

	check, err := s.SaveFailedCheck(subject.ID, time.Now().Unix(), "navigate: context deadline exceeded")
	require.NoError(t, err)
	assert.False(t, check.Found)
	assert.NotEmpty(t, check.Error)

	latest, err := s.GetLatestCheck(subject.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, check.ID, latest.ID)
}

func TestGetLatestCheck_EmptyHistory(t *testing.T) {
	s := newTestStore(t)

	subject, err := s.GetOrCreateSubject(KindSiteRank, "키워드", "example.com")
	require.NoError(t, err)

	latest, err := s.GetLatestCheck(subject.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestDeleteChecksBefore(t *testing.T) {
	s := newTestStore(t)

	subject, err := s.GetOrCreateSubject(KindSiteRank, "키워드", "example.com")
	require.NoError(t, err)

	base := time.Now().Unix()
	for i := 0; i < 5; i++ {
		_, err := s.SaveRankCheck(subject.ID, base+int64(i*3600), i+1, "", "")
		require.NoError(t, err)
	}

	pruned, err := s.DeleteChecksBefore(base + 3*3600)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pruned)

	checks, err := s.GetSubjectChecks(subject.ID)
	require.NoError(t, err)
	assert.Len(t, checks, 2)
}
