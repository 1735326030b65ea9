/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/srediag/mmc-mailbox/pkg/simbus"
)

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) TestVerifyConfig() {
	s.Require().NotNil(VerifyConfig(nil))

	conf := DefaultConfig()
	s.Require().Nil(VerifyConfig(conf))

	conf.Size = 0
	s.Require().ErrorIs(VerifyConfig(conf), ErrConfig)
	conf.Size = defaultByteLen

	conf.PageSize = 0
	s.Require().ErrorIs(VerifyConfig(conf), ErrConfig)

	// Non-power-of-two pages are suspicious but accepted.
	conf.PageSize = 24
	s.Require().Nil(VerifyConfig(conf))
}

func (s *ConfigTestSuite) TestIOLimitTunable() {
	prev := IOLimit()
	defer func() { s.Require().Nil(SetIOLimit(prev)) }()

	s.Require().ErrorIs(SetIOLimit(0), ErrConfig)

	// Forced down to the nearest power of two.
	s.Require().Nil(SetIOLimit(100))
	s.Require().Equal(uint32(64), IOLimit())

	s.Require().Nil(SetIOLimit(128))
	s.Require().Equal(uint32(128), IOLimit())
}

func (s *ConfigTestSuite) TestWriteTimeoutTunable() {
	prev := WriteTimeout()
	defer func() { s.Require().Nil(SetWriteTimeout(prev)) }()

	s.Require().ErrorIs(SetWriteTimeout(0), ErrConfig)
	s.Require().Nil(SetWriteTimeout(10 * time.Millisecond))
	s.Require().Equal(10*time.Millisecond, WriteTimeout())
}

func (s *ConfigTestSuite) TestAttachRejectsBadConfig() {
	bus := simbus.New(int(defaultByteLen))

	conf := DefaultConfig()
	conf.PageSize = 0
	d, err := Attach(bus, conf)
	s.Require().ErrorIs(err, ErrConfig)
	s.Require().Nil(d)

	conf = DefaultConfig()
	conf.Size = 0
	d, err = Attach(bus, conf)
	s.Require().ErrorIs(err, ErrConfig)
	s.Require().Nil(d)
}

func (s *ConfigTestSuite) TestAttachWithoutConfig() {
	bus := simbus.New(int(defaultByteLen))
	d, err := Attach(bus, nil)
	s.Require().Nil(err)
	s.Require().NotNil(d)
	s.Require().Equal(uint32(defaultByteLen), d.Size())
	s.Require().Nil(d.Close())
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
