package flashcard

var modules = []Module{
	{ID: 1, Name: "Cell: The Basic Unit of Life"},
	{ID: 2, Name: "Human Digestive System"},
	{ID: 3, Name: "Human Respiratory System"},
	{ID: 4, Name: "Human Circulatory System"},
	{ID: 5, Name: "Human Nervous System"},
}

// fallbackCards is the local deck database used when no generator is configured or it fails.
// module ID -> bucket -> cards
var fallbackCards = map[int]map[string][]Card{
	1: {
		Positive: {
			{Front: "Differentiate prokaryotic vs eukaryotic cells.", Back: "Prokaryotes lack nucleus, eukaryotes have it."},
			{Front: "What is the role of ribosomes?", Back: "Protein synthesis: ribosomes make proteins for the cell."},
			{Front: "Why are chloroplasts essential?", Back: "They make food for plants via photosynthesis."},
			{Front: "What makes stem cells unique?", Back: "They can transform into many different cell types."},
		},
		Neutral: {
			{Front: "Why are cells called the structural unit of life?", Back: "Because they build the body and perform its functions."},
			{Front: "Which organelle is the powerhouse of the cell?", Back: "Mitochondria: they produce energy."},
			{Front: "Name 2 differences between plant and animal cells.", Back: "Plant cells have cell walls and chloroplasts."},
			{Front: "Give an example of a specialized cell.", Back: "Nerve cell or muscle cell."},
		},
		Negative: {
			{Front: "What is the basic unit of life?", Back: "Cell."},
			{Front: "Which part is called the brain of the cell?", Back: "Nucleus."},
			{Front: "Which cells have a cell wall?", Back: "Plant cells."},
			{Front: "What do many cells together form?", Back: "Tissues."},
		},
	},
	2: {
		Positive: {
			{Front: "What's the difference between mechanical and chemical digestion?", Back: "Mechanical = physical breakdown, Chemical = enzyme action."},
			{Front: "What is the wave-like movement of the food pipe called?", Back: "Peristalsis."},
			{Front: "Why are villi important in the small intestine?", Back: "They absorb nutrients efficiently by increasing surface area."},
			{Front: "Which enzyme breaks down starch?", Back: "Amylase."},
		},
		Neutral: {
			{Front: "Where does digestion start?", Back: "Mouth: with chewing and saliva."},
			{Front: "Which fluid in the mouth helps digest food?", Back: "Saliva."},
			{Front: "What is the function of bile?", Back: "It helps break down fats in digestion."},
			{Front: "What carries absorbed nutrients around the body?", Back: "Bloodstream."},
		},
		Negative: {
			{Front: "What is the food pipe called?", Back: "Esophagus."},
			{Front: "Which organ churns food?", Back: "Stomach."},
			{Front: "Where are nutrients absorbed?", Back: "Small intestine."},
			{Front: "What is stored in the large intestine?", Back: "Waste material before removal."},
		},
	},
	3: {
		Positive: {
			{Front: "What energy molecule is made in respiration?", Back: "ATP (Adenosine Triphosphate)."},
			{Front: "What carries oxygen in the blood?", Back: "Hemoglobin in red blood cells."},
			{Front: "What triggers faster breathing?", Back: "Higher carbon dioxide (CO₂) in the blood."},
			{Front: "Name one way to keep lungs healthy.", Back: "Exercise regularly or avoid smoking."},
		},
		Neutral: {
			{Front: "Name two parts of the respiratory system.", Back: "Nose and lungs."},
			{Front: "What muscle helps us breathe?", Back: "Diaphragm: it contracts and relaxes to move air."},
			{Front: "Where does gas exchange happen in the lungs?", Back: "In alveoli (tiny air sacs)."},
			{Front: "How is breathing different from respiration?", Back: "Breathing is moving air, respiration is energy release in cells."},
		},
		Negative: {
			{Front: "What gas do we breathe in to live?", Back: "Oxygen."},
			{Front: "What is the windpipe called?", Back: "Trachea."},
			{Front: "What are the tiny sacs in lungs called?", Back: "Alveoli."},
			{Front: "What gas do we exhale?", Back: "Carbon dioxide."},
		},
	},
	4: {
		Positive: {
			{Front: "What is the difference between pulmonary and systemic circulation?", Back: "Pulmonary = lungs, Systemic = whole body."},
			{Front: "What is the role of heart valves?", Back: "Prevent backflow and keep blood flowing one way."},
			{Front: "Which vessels usually carry deoxygenated blood?", Back: "Veins (except the pulmonary vein)."},
			{Front: "Name one way to keep the circulatory system healthy.", Back: "Exercise regularly or eat healthy foods."},
		},
		Neutral: {
			{Front: "Why is it called double circulation?", Back: "Blood moves through two loops: lungs and body."},
			{Front: "How many chambers does the heart have?", Back: "Four: two atria and two ventricles."},
			{Front: "What do we call the force of blood in vessels?", Back: "Blood pressure."},
			{Front: "What is the role of white blood cells?", Back: "Fight infections and protect the body."},
		},
		Negative: {
			{Front: "What organ pumps blood in our body?", Back: "Heart."},
			{Front: "Which blood cells carry oxygen?", Back: "Red blood cells."},
			{Front: "Which blood vessels carry blood back to the heart?", Back: "Veins."},
			{Front: "What is this blood movement around the body called?", Back: "Circulation."},
		},
	},
	5: {
		Positive: {
			{Front: "What is the tiny gap between neurons called?", Back: "Synapse: where neurons communicate."},
			{Front: "What part controls involuntary actions like heartbeat?", Back: "Autonomic nervous system."},
			{Front: "Which part of the brain controls balance?", Back: "Cerebellum."},
			{Front: "How fast can nerve messages travel?", Back: "Up to 300 km/h or more."},
		},
		Neutral: {
			{Front: "What does the peripheral nervous system include?", Back: "All nerves outside the brain and spinal cord."},
			{Front: "What cell sends messages in the nervous system?", Back: "Neurons: specialized signal carriers."},
			{Front: "Which nerves send commands from the brain?", Back: "Motor nerves."},
			{Front: "Name one way to protect the nervous system.", Back: "Wear helmets or eat healthy food."},
		},
		Negative: {
			{Front: "What does the nervous system control?", Back: "Movement, thoughts, and body reactions."},
			{Front: "Name the three main parts of the nervous system.", Back: "Brain, spinal cord, and nerves."},
			{Front: "What organ is the control center of the body?", Back: "Brain."},
			{Front: "What do we call quick, automatic actions?", Back: "Reflexes."},
		},
	},
}
