// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

// CharacterType identifies a freelancer.
type CharacterType int32

const (
	CharacterNone CharacterType = iota
	CharacterBattleMonk
	CharacterBazookaGirl
	CharacterDigitalSorceress
	CharacterGremlins
	CharacterNanoSmith
	CharacterRageBeast
	CharacterRobotAnimal
	CharacterScoundrel
	CharacterSniper
	CharacterSpaceMarine
	CharacterSpark
	CharacterTeleportingNinja
	CharacterThief
	CharacterTracker
	CharacterTrickster
	CharacterPunchingDummy
	CharacterRampart
	CharacterClaymore
	CharacterBlaster
	CharacterFishMan
	CharacterExo
	CharacterSoldier
	CharacterMartyr
	CharacterSensei
	CharacterPendingWillFill
	CharacterManta
	CharacterValkyrie
	CharacterArcher
	CharacterTestFreelancer1
	CharacterTestFreelancer2
	CharacterSamurai
	CharacterGryd
	CharacterCleric
	CharacterNeko
	CharacterScamp
	CharacterFemaleWillFill
	CharacterDino
	CharacterIceborg
	CharacterFireborg
	CharacterLast
)

var characterNames = [...]string{
	"None", "BattleMonk", "BazookaGirl", "DigitalSorceress", "Gremlins", "NanoSmith", "RageBeast", "RobotAnimal",
	"Scoundrel", "Sniper", "SpaceMarine", "Spark", "TeleportingNinja", "Thief", "Tracker", "Trickster",
	"PunchingDummy", "Rampart", "Claymore", "Blaster", "FishMan", "Exo", "Soldier", "Martyr", "Sensei",
	"PendingWillFill", "Manta", "Valkyrie", "Archer", "TestFreelancer1", "TestFreelancer2", "Samurai", "Gryd",
	"Cleric", "Neko", "Scamp", "FemaleWillFill", "Dino", "Iceborg", "Fireborg", "Last",
}

func (c CharacterType) String() string {
	if c < 0 || int(c) >= len(characterNames) {
		return "Invalid"
	}
	return characterNames[c]
}

// IsWillFill reports whether the character is a fill placeholder.
func (c CharacterType) IsWillFill() bool {
	return c == CharacterPendingWillFill || c == CharacterFemaleWillFill
}

type CharacterRole int32

const (
	CharacterRoleNone CharacterRole = iota
	CharacterRoleTank
	CharacterRoleAssassin
	CharacterRoleSupport
)

func (r CharacterRole) String() string {
	switch r {
	case CharacterRoleTank:
		return "Tank"
	case CharacterRoleAssassin:
		return "Assassin"
	case CharacterRoleSupport:
		return "Support"
	default:
		return "None"
	}
}

// CharacterConfig describes whether a freelancer may be picked by players and which role it fills.
type CharacterConfig struct {
	CharacterType   CharacterType
	CharacterRole   CharacterRole
	AllowForPlayers bool
}

// CharacterConfigs is keyed by CharacterType. Characters missing from it are not selectable.
var CharacterConfigs = map[CharacterType]CharacterConfig{
	CharacterBattleMonk:       {CharacterBattleMonk, CharacterRoleTank, true},
	CharacterBazookaGirl:      {CharacterBazookaGirl, CharacterRoleAssassin, true},
	CharacterDigitalSorceress: {CharacterDigitalSorceress, CharacterRoleSupport, true},
	CharacterGremlins:         {CharacterGremlins, CharacterRoleAssassin, true},
	CharacterNanoSmith:        {CharacterNanoSmith, CharacterRoleSupport, true},
	CharacterRageBeast:        {CharacterRageBeast, CharacterRoleTank, true},
	CharacterRobotAnimal:      {CharacterRobotAnimal, CharacterRoleTank, true},
	CharacterScoundrel:        {CharacterScoundrel, CharacterRoleAssassin, true},
	CharacterSniper:           {CharacterSniper, CharacterRoleAssassin, true},
	CharacterSpaceMarine:      {CharacterSpaceMarine, CharacterRoleTank, true},
	CharacterSpark:            {CharacterSpark, CharacterRoleSupport, true},
	CharacterTeleportingNinja: {CharacterTeleportingNinja, CharacterRoleAssassin, true},
	CharacterThief:            {CharacterThief, CharacterRoleAssassin, true},
	CharacterTracker:          {CharacterTracker, CharacterRoleAssassin, true},
	CharacterTrickster:        {CharacterTrickster, CharacterRoleAssassin, true},
	CharacterPunchingDummy:    {CharacterPunchingDummy, CharacterRoleNone, false},
	CharacterRampart:          {CharacterRampart, CharacterRoleTank, true},
	CharacterClaymore:         {CharacterClaymore, CharacterRoleTank, true},
	CharacterBlaster:          {CharacterBlaster, CharacterRoleAssassin, true},
	CharacterFishMan:          {CharacterFishMan, CharacterRoleSupport, true},
	CharacterExo:              {CharacterExo, CharacterRoleTank, true},
	CharacterSoldier:          {CharacterSoldier, CharacterRoleAssassin, true},
	CharacterMartyr:           {CharacterMartyr, CharacterRoleSupport, true},
	CharacterSensei:           {CharacterSensei, CharacterRoleSupport, true},
	CharacterPendingWillFill:  {CharacterPendingWillFill, CharacterRoleNone, true},
	CharacterManta:            {CharacterManta, CharacterRoleTank, true},
	CharacterValkyrie:         {CharacterValkyrie, CharacterRoleTank, true},
	CharacterArcher:           {CharacterArcher, CharacterRoleAssassin, true},
	CharacterSamurai:          {CharacterSamurai, CharacterRoleAssassin, true},
	CharacterGryd:             {CharacterGryd, CharacterRoleAssassin, true},
	CharacterCleric:           {CharacterCleric, CharacterRoleSupport, true},
	CharacterNeko:             {CharacterNeko, CharacterRoleAssassin, true},
	CharacterScamp:            {CharacterScamp, CharacterRoleTank, true},
	CharacterDino:             {CharacterDino, CharacterRoleAssassin, true},
	CharacterIceborg:          {CharacterIceborg, CharacterRoleSupport, true},
	CharacterFireborg:         {CharacterFireborg, CharacterRoleAssassin, true},
}

// RoleOf returns the configured role of a character, CharacterRoleNone when unknown.
func RoleOf(c CharacterType) CharacterRole {
	return CharacterConfigs[c].CharacterRole
}
