/*
Copyright (c) The mac154 Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

// tuneAndSend is the kind of caller-side sequence the TSCH state
// machine drives against a Radio each slot: tune, assess, transmit.
func tuneAndSend(r Radio, ch uint16, pkt []byte) error {
	if err := r.SetChannel(ch); err != nil {
		return err
	}
	if _, err := r.CCA(); err != nil {
		return err
	}
	return r.Send(pkt, 0)
}

func TestMockRadioRecordsExpectedCallSequence(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockRadio(ctrl)

	gomock.InOrder(
		m.EXPECT().SetChannel(uint16(15)).Return(nil),
		m.EXPECT().CCA().Return(CCAIdle, nil),
		m.EXPECT().Send([]byte{0x01, 0x02}, uint64(0)).Return(nil),
	)

	err := tuneAndSend(m, 15, []byte{0x01, 0x02})
	assert.NoError(t, err)
}

func TestMockRadioPropagatesSetChannelError(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockRadio(ctrl)

	m.EXPECT().SetChannel(uint16(99)).Return(ErrNotSupported)

	err := tuneAndSend(m, 99, []byte{0x01})
	assert.ErrorIs(t, err, ErrNotSupported)
}
