package discovery

import (
	"encoding/json"
	"testing"

	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/mqtt"
)

func testTopics() mqtt.Topics {
	return mqtt.Topics{HomieBase: "homie/", LSHBase: "lsh/"}
}

func TestBuildSwitchConfig(t *testing.T) {
	cfg := buildSwitchConfig(testTopics(), "lounge-switch", "a1", 0)

	if cfg.UniqueID != "lounge-switch_a1" {
		t.Errorf("UniqueID = %q, want %q", cfg.UniqueID, "lounge-switch_a1")
	}
	if cfg.CommandTopic != "lsh/lounge-switch/IN" {
		t.Errorf("CommandTopic = %q, want lsh/lounge-switch/IN", cfg.CommandTopic)
	}
	if cfg.StateTopic != "lsh/lounge-switch/state" {
		t.Errorf("StateTopic = %q, want lsh/lounge-switch/state", cfg.StateTopic)
	}
	if cfg.ValueTemplate != "{{ value_json.as[0] | lower }}" {
		t.Errorf("ValueTemplate = %q", cfg.ValueTemplate)
	}

	var payloadOn map[string]any
	if err := json.Unmarshal([]byte(cfg.PayloadOn), &payloadOn); err != nil {
		t.Fatalf("PayloadOn is not valid JSON: %v", err)
	}
	if payloadOn["p"] != "c_asas" || payloadOn["ai"] != "a1" || payloadOn["as"] != true {
		t.Errorf("PayloadOn = %+v, want c_asas/a1/true", payloadOn)
	}
}

func TestBuildSwitchConfig_DistinctActuatorsGetDistinctTopics(t *testing.T) {
	a := buildSwitchConfig(testTopics(), "lounge-switch", "a1", 0)
	b := buildSwitchConfig(testTopics(), "lounge-switch", "a2", 1)

	if a.UniqueID == b.UniqueID {
		t.Fatal("expected distinct unique_ids for distinct actuators")
	}
	if a.ValueTemplate == b.ValueTemplate {
		t.Fatal("expected distinct value_templates indexed by actuator position")
	}
}

func TestObjectID(t *testing.T) {
	if got := objectID("lounge-switch", "a1"); got != "lounge-switch_a1" {
		t.Errorf("objectID() = %q, want lounge-switch_a1", got)
	}
}
