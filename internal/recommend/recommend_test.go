package recommend

import "testing"

func TestForCommunity_KnownTypes(t *testing.T) {
	for _, communityType := range []string{"farmer", "student", "business"} {
		cards := ForCommunity(communityType)
		if len(cards) == 0 {
			t.Errorf("Expected cards for %s", communityType)
		}
	}
}

func TestForCommunity_UnknownTypeGetsGeneralCards(t *testing.T) {
	cards := ForCommunity("astronaut")
	if len(cards) == 0 {
		t.Fatal("Expected general cards for unknown community type")
	}
	if cards[0].Title != "Ayushman Bharat" {
		t.Errorf("Expected general set, got %+v", cards[0])
	}
}
