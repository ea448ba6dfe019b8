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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateSubject(t *testing.T) {
	s := newTestStore(t)

	t.Run("CreatesOnFirstSight", func(t *testing.T) {
		subject, err := s.GetOrCreateSubject(KindSiteRank, "강남 맛집", "blog.naver.com")
		require.NoError(t, err)
		assert.NotZero(t, subject.ID)
		assert.Equal(t, KindSiteRank, subject.Kind)
	})

	t.Run("ReturnsExistingForSamePair", func(t *testing.T) {
		first, err := s.GetOrCreateSubject(KindSiteRank, "강남 맛집", "blog.naver.com")
		require.NoError(t, err)
		second, err := s.GetOrCreateSubject(KindSiteRank, "강남 맛집", "blog.naver.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("KindSeparatesIdenticalPairs", func(t *testing.T) {
		site, err := s.GetOrCreateSubject(KindSiteRank, "캠핑용품", "blog.naver.com")
		require.NoError(t, err)
		exposure, err := s.GetOrCreateSubject(KindURLExposure, "캠핑용품", "blog.naver.com")
		require.NoError(t, err)
		assert.NotEqual(t, site.ID, exposure.ID)
	})
}

func TestGetSubjects(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetOrCreateSubject(KindSiteRank, "키워드1", "a.example.com")
	require.NoError(t, err)
	_, err = s.GetOrCreateSubject(KindSiteRank, "키워드2", "b.example.com")
	require.NoError(t, err)
	_, err = s.GetOrCreateSubject(KindURLExposure, "키워드3", "https://c.example.com/page")
	require.NoError(t, err)

	siteSubjects, err := s.GetSubjects(KindSiteRank)
	require.NoError(t, err)
	assert.Len(t, siteSubjects, 2)

	exposureSubjects, err := s.GetSubjects(KindURLExposure)
	require.NoError(t, err)
	assert.Len(t, exposureSubjects, 1)
}

func TestDeleteSubject(t *testing.T) {
	s := newTestStore(t)

	subject, err := s.GetOrCreateSubject(KindSiteRank, "삭제 대상", "gone.example.com")
	require.NoError(t, err)
	_, err = s.SaveRankCheck(subject.ID, time.Now().Unix(), 1, "https://gone.example.com", "title")
	require.NoError(t, err)

	require.NoError(t, s.DeleteSubject(subject.ID))

	err = s.DeleteSubject(subject.ID)
	assert.Error(t, err, "deleting a missing subject should fail")

	subjects, err := s.GetSubjects(KindSiteRank)
	require.NoError(t, err)
	assert.Empty(t, subjects)
}
