// idle_strategies_test.go: Tests for the public idle-strategy factories
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"testing"
	"time"
)

func TestIdleStrategyFactories_ReturnNonNil(t *testing.T) {
	strategies := []IdleStrategy{
		NewSpinningIdleStrategy(),
		NewSleepingIdleStrategy(time.Millisecond, 10),
		NewYieldingIdleStrategy(100),
		NewChannelIdleStrategy(0),
		NewProgressiveIdleStrategy(),
	}
	for i, s := range strategies {
		if s == nil {
			t.Errorf("strategy %d is nil", i)
		}
	}
}

func TestPredefinedStrategies_AreInitialized(t *testing.T) {
	if SpinningStrategy == nil || BalancedStrategy == nil || EfficientStrategy == nil || HybridStrategy == nil {
		t.Fatal("expected every predefined strategy variable to be non-nil")
	}
}
